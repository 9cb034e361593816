package validate

import (
	"strings"
	"testing"

	"github.com/mediajournal/mediajournal/internal/model"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		wantField string
	}{
		{name: "valid", username: "alice", email: "alice@example.com", password: "password1"},
		{name: "missing username", username: " ", email: "alice@example.com", password: "password1", wantField: "username"},
		{name: "long username", username: strings.Repeat("a", 51), email: "alice@example.com", password: "password1", wantField: "username"},
		{name: "bad email", username: "alice", email: "bad email", password: "password1", wantField: "email"},
		{name: "short password", username: "alice", email: "alice@example.com", password: "short", wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tt.username, tt.email, tt.password)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			ve, ok := err.(*model.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("expected field %s, got %s", tt.wantField, ve.Field)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	if err := Login("", "x"); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if err := Login("a@b.co", ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if err := Login("a@b.co", "anything"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
