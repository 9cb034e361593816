package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"

	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
)

func Username(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.NewValidationError("username", "is required")
	}
	if utf8.RuneCountInString(v) > 50 {
		return model.NewValidationError("username", "exceeds 50 characters")
	}
	return nil
}

func Email(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.NewValidationError("email", "is required")
	}
	if len(v) > 320 || !strfmt.IsEmail(v) {
		return model.NewValidationError("email", "must be a valid email")
	}
	return nil
}

func Password(v string) error {
	if len(v) < auth.MinPasswordLength {
		return model.NewValidationError("password", fmt.Sprintf("must be at least %d characters long", auth.MinPasswordLength))
	}
	if len(v) > 72 {
		return model.NewValidationError("password", "exceeds 72 bytes")
	}
	return nil
}

// -------- Request specific helpers ----------

// Register validates a registration request.
func Register(username, email, password string) error {
	if err := Username(username); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	return Password(password)
}

// Login only checks presence; wrong values are reported as bad credentials.
func Login(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return model.NewValidationError("email", "is required")
	}
	if password == "" {
		return model.NewValidationError("password", "is required")
	}
	return nil
}
