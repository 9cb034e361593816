package auth

import "context"

// Identity is the authenticated caller a request acts as.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// Authorizer resolves a bearer token to the identity it was issued for.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
