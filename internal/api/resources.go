package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/api/respond"
	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/services"
)

// ResourceHandler is the HTTP transport for one resource type. All routes sit
// behind Authenticate, so the caller identity is always in the context.
type ResourceHandler[T model.Content[T]] struct {
	svc *services.Records[T]
	log zerolog.Logger
}

func NewResourceHandler[T model.Content[T]](svc *services.Records[T], log zerolog.Logger) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc, log: log.With().Str("resource", svc.Kind().Collection).Logger()}
}

// Register mounts the five routes on r, which is already prefixed with the
// collection path.
func (h *ResourceHandler[T]) Register(r *mux.Router) {
	r.HandleFunc("", h.Create).Methods("POST")
	r.HandleFunc("/", h.Create).Methods("POST")
	r.HandleFunc("", h.List).Methods("GET")
	r.HandleFunc("/", h.List).Methods("GET")
	r.HandleFunc("/{id}", h.Get).Methods("GET")
	r.HandleFunc("/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/{id}", h.Delete).Methods("DELETE")
}

// Create POST /api/<collection>
func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.CreateFields(r.Context(), callerID(r), fields)
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// List GET /api/<collection>
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context(), callerID(r))
	if err != nil {
		h.fail(w, r, "", err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, recs)
}

// Get GET /api/<collection>/{id}
func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.svc.Get(r.Context(), callerID(r), id)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// Update PUT /api/<collection>/{id}
func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Update(r.Context(), callerID(r), id, fields)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// Delete DELETE /api/<collection>/{id}
func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.Delete(r.Context(), callerID(r), id); err != nil {
		h.fail(w, r, id, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, respond.Removed{Msg: h.svc.Kind().Name + " removed", ID: id})
}

func (h *ResourceHandler[T]) fail(w http.ResponseWriter, r *http.Request, id string, err error) {
	if isForbidden(err) {
		// possible misuse; ids only, never content
		h.log.Warn().Str("actor", callerID(r)).Str("record_id", id).Str("method", r.Method).Msg("ownership check failed")
		ownershipDenials.WithLabelValues(h.svc.Kind().Collection).Inc()
	}
	writeServiceError(w, h.log, h.svc.Kind(), err)
}

func callerID(r *http.Request) string {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return id.UserID
	}
	return ""
}
