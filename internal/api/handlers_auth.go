package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/api/respond"
	"github.com/mediajournal/mediajournal/internal/api/validate"
	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/services"
)

var kindUser = model.Kind{Name: "User", Collection: "users"}

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewAuthHandler(users *services.UserService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Register(req.Username, req.Email, req.Password); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, model.ErrConflict) {
		respond.WriteError(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		writeServiceError(w, h.log, kindUser, err)
		return
	}
	h.log.Info().Str("user_id", u.ID).Msg("user registered")
	respond.WriteJSON(w, http.StatusOK, map[string]string{"msg": "User registered", "id": u.ID})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Login(req.Email, req.Password); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respond.WriteBadRequest(w, "Invalid credentials")
		return
	}
	if err != nil {
		writeServiceError(w, h.log, kindUser, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, pair)
}

// Refresh POST /api/auth/refresh-token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		respond.WriteBadRequest(w, "refreshToken is required")
		return
	}
	pair, err := h.users.Refresh(r.Context(), req.RefreshToken)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenExpired) {
		respond.WriteUnauthorized(w, "Refresh token is not valid")
		return
	}
	if err != nil {
		writeServiceError(w, h.log, kindUser, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, pair)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, h.log, kindUser, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
