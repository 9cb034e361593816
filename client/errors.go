package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mediajournal/mediajournal/internal/api/respond"
)

var (
	// ErrNoSession is returned by authenticated calls made before login.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired is returned when the refresh token is rejected.
	ErrSessionExpired = errors.New("session expired, log in again")
)

// ownershipMessage is the server's message when a record belongs to another user.
const ownershipMessage = "User not authorized"

// APIError is a non-2xx answer from the journal server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func statusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

// IsValidation reports whether the server rejected the input.
func IsValidation(err error) bool { return statusOf(err) == http.StatusBadRequest }

// IsUnavailable reports whether the server asked the caller to retry later.
func IsUnavailable(err error) bool { return statusOf(err) == http.StatusServiceUnavailable }

// IsForbidden reports whether the record exists but belongs to someone else.
// The server answers that case with 401.
func IsForbidden(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == http.StatusForbidden ||
		(ae.StatusCode == http.StatusUnauthorized && ae.Message == ownershipMessage)
}

// IsUnauthorized reports whether the request was rejected for its credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired) ||
		(statusOf(err) == http.StatusUnauthorized && !IsForbidden(err))
}

// Message returns a single line suitable for showing to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}

func decodeError(resp *resty.Response) error {
	var body respond.ErrorResponse
	msg := ""
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg = body.Msg
		if msg == "" {
			msg = body.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}
