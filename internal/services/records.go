package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
)

// Records is the owner-scoped CRUD service for one resource type. Every
// operation takes the acting user's id; records owned by anyone else are
// reported as model.ErrForbidden and unknown ids as model.ErrNotFound.
//
// Get-then-mutate is not atomic. Only the owner can mutate a record, so a race
// is between two requests of the same user.
type Records[T model.Content[T]] struct {
	kind  model.Kind
	store store.Store
	now   func() time.Time
}

func NewRecords[T model.Content[T]](s store.Store, kind model.Kind) *Records[T] {
	return &Records[T]{kind: kind, store: s, now: time.Now}
}

// Kind reports the resource type this service manages.
func (s *Records[T]) Kind() model.Kind { return s.kind }

func (s *Records[T]) coll() store.Collection { return s.store.Collection(s.kind.Collection) }

// Create validates content and stores it as a new record owned by ownerID.
func (s *Records[T]) Create(ctx context.Context, ownerID string, content T) (*model.Record[T], error) {
	if ownerID == "" {
		return nil, model.ErrUnauthorized
	}
	content = content.Normalized()
	if err := content.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.kind.Collection, err)
	}
	doc, err := s.coll().Insert(ctx, &store.Document{
		Owner:     ownerID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	return &model.Record[T]{ID: doc.ID, Owner: doc.Owner, CreatedAt: doc.CreatedAt, Content: content}, nil
}

// CreateFields decodes client fields and creates a record from them.
func (s *Records[T]) CreateFields(ctx context.Context, ownerID string, fields model.Fields) (*model.Record[T], error) {
	content, err := model.DecodeContent[T](fields)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, ownerID, content)
}

// List returns ownerID's records newest first. It never returns nil.
func (s *Records[T]) List(ctx context.Context, ownerID string) ([]*model.Record[T], error) {
	if ownerID == "" {
		return nil, model.ErrUnauthorized
	}
	docs, err := s.coll().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Record[T], 0, len(docs))
	for _, d := range docs {
		// the store filters by owner; check again so a driver bug cannot leak records
		if d.Owner != ownerID {
			continue
		}
		rec, err := s.decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Records[T]) Get(ctx context.Context, ownerID, id string) (*model.Record[T], error) {
	doc, err := s.resolve(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.decode(doc)
}

// Update merges patch over the stored content, validates the result and
// persists it. Envelope keys in patch are ignored.
func (s *Records[T]) Update(ctx context.Context, ownerID, id string, patch model.Fields) (*model.Record[T], error) {
	doc, err := s.resolve(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	current, err := s.decode(doc)
	if err != nil {
		return nil, err
	}
	merged, err := model.MergeContent(current.Content, patch)
	if err != nil {
		return nil, err
	}
	merged = merged.Normalized()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.kind.Collection, err)
	}
	if err := s.coll().Replace(ctx, doc.ID, body); err != nil {
		return nil, err
	}
	current.Content = merged
	return current, nil
}

func (s *Records[T]) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.resolve(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.coll().Delete(ctx, doc.ID)
}

// resolve loads id and checks that ownerID owns it.
func (s *Records[T]) resolve(ctx context.Context, ownerID, id string) (*store.Document, error) {
	if ownerID == "" {
		return nil, model.ErrUnauthorized
	}
	// ids are store-generated UUIDs; anything else cannot exist
	if !strfmt.IsUUID(id) {
		return nil, model.ErrNotFound
	}
	doc, err := s.coll().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != ownerID {
		return nil, model.ErrForbidden
	}
	return doc, nil
}

func (s *Records[T]) decode(d *store.Document) (*model.Record[T], error) {
	var content T
	if err := json.Unmarshal(d.Body, &content); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", s.kind.Collection, d.ID, err)
	}
	return &model.Record[T]{ID: d.ID, Owner: d.Owner, CreatedAt: d.CreatedAt, Content: content}, nil
}
