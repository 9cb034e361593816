package auth

import (
	"net/http"
	"strings"
)

// TokenHeader is the header the web client sends its access token in.
const TokenHeader = "x-auth-token"

// ExtractToken returns the token from the x-auth-token header, falling back
// to "Authorization: Bearer <token>".
func ExtractToken(r *http.Request) (string, error) {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok, nil
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
