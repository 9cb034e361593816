package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mediajournal/mediajournal/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres, bolt).
type Store interface {
	Users() Users
	// Collection returns the document collection with the given name. The
	// collection need not exist beforehand.
	Collection(name string) Collection
	Close() error
}

// Document is one stored record. Body holds the content fields as a JSON
// object; the envelope fields are kept alongside it so they can be queried.
type Document struct {
	ID        string
	Owner     string
	CreatedAt time.Time
	Body      json.RawMessage
}

// Collection is a set of owner-tagged documents. Owner checks are the caller's
// job: Get/Replace/Delete address a document by id alone.
type Collection interface {
	// Insert assigns a fresh id and stores d. CreatedAt is stored as given.
	Insert(ctx context.Context, d *Document) (*Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	// ListByOwner returns owner's documents newest first. Documents with equal
	// CreatedAt come back in reverse insertion order.
	ListByOwner(ctx context.Context, owner string) ([]*Document, error)
	// Replace overwrites the body of an existing document. The envelope is
	// left untouched.
	Replace(ctx context.Context, id string, body json.RawMessage) error
	Delete(ctx context.Context, id string) error
}

// Users persists accounts. Emails are compared as stored; callers lowercase
// them first.
type Users interface {
	// Create returns model.ErrConflict when the email is already registered.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
