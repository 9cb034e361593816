package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mediajournal/mediajournal/internal/api/respond"
	"github.com/mediajournal/mediajournal/internal/model"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// retryAfterSeconds is the hint sent with 503 responses.
const retryAfterSeconds = 2

// writeServiceError maps a service error onto a status code. Ownership
// mismatches are answered with 401, the same status as a bad token.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, kind model.Kind, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, kind.Name+" not found")
	case errors.Is(err, model.ErrForbidden):
		respond.WriteUnauthorized(w, "User not authorized")
	case errors.Is(err, model.ErrUnauthorized):
		respond.WriteUnauthorized(w, "Authorization denied")
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, "Already exists")
	case errors.Is(err, model.ErrUnavailable):
		log.Warn().Err(err).Str("resource", kind.Collection).Msg("store unavailable")
		respond.WriteUnavailable(w, retryAfterSeconds)
	default:
		log.Error().Stack().Err(err).Str("resource", kind.Collection).Msg("request failed")
		respond.WriteInternalError(w)
	}
}

// decodeFields reads a flat JSON object from the request body.
func decodeFields(w http.ResponseWriter, r *http.Request) (model.Fields, bool) {
	var f model.Fields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&f); err != nil || f == nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return nil, false
	}
	return f, true
}

// decodeJSON reads a request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

func isForbidden(err error) bool { return errors.Is(err, model.ErrForbidden) }
