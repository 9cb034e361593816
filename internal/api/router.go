package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/api/recovery"
	"github.com/mediajournal/mediajournal/internal/api/respond"
	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/services"
	"github.com/mediajournal/mediajournal/internal/store"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Store       store.Store
	Tokens      *auth.Issuer
	Health      HealthReporter
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter wires every route and middleware and returns the root handler.
func NewRouter(d Deps) http.Handler {
	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "Route not found")
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	root.Use(recovery.Middleware(d.Log), Observe(d.Log), mux.CORSMethodMiddleware(root))

	// Operational
	root.HandleFunc("/api/health", NewHealthHandler(d.Health).CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Credentials
	users := services.NewUserService(d.Store, d.Tokens)
	authHandler := NewAuthHandler(users, d.Log)
	root.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	root.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	root.HandleFunc("/api/auth/refresh-token", authHandler.Refresh).Methods("POST")
	me := root.PathPrefix("/api/auth/me").Subrouter()
	me.Use(Authenticate(d.Tokens))
	me.HandleFunc("", authHandler.Me).Methods("GET")

	// Resources
	mountResource[model.Blog](root, d, model.KindBlog)
	mountResource[model.Song](root, d, model.KindSong)
	mountResource[model.MusicVideo](root, d, model.KindMusicVideo)
	mountResource[model.Movie](root, d, model.KindMovie)
	mountResource[model.Recipe](root, d, model.KindRecipe)

	return CORS(d.CORSOrigins)(root)
}

func mountResource[T model.Content[T]](root *mux.Router, d Deps, kind model.Kind) {
	sub := root.PathPrefix("/api/" + kind.Collection).Subrouter()
	sub.Use(Authenticate(d.Tokens))
	NewResourceHandler(services.NewRecords[T](d.Store, kind), d.Log).Register(sub)
}
