// Package bolt is an embedded single-file store backed by bbolt. Each
// collection is a nested bucket under documentsBucket keyed by record id.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
)

var (
	documentsBucket = []byte("documents")
	usersBucket     = []byte("users")
	usersIndex      = []byte("users_email")
)

// Store is a bbolt-backed store.Store.
type Store struct {
	Path string
	db   *bbolt.DB
}

// Open opens (or creates) the database file and its top-level buckets. It
// fails with model.ErrUnavailable if another process holds the file lock
// past the timeout.
func Open(path string, timeout time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, translate(fmt.Errorf("open bolt %s: %w", path, err))
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{documentsBucket, usersBucket, usersIndex} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Path: path, db: db}, nil
}

func (s *Store) Users() store.Users { return &users{db: s.db} }

func (s *Store) Collection(name string) store.Collection {
	return &collection{db: s.db, name: []byte(name)}
}

func (s *Store) Close() error { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error {
	return translate(s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(documentsBucket) == nil {
			return errors.New("documents bucket missing")
		}
		return nil
	}))
}

func translate(err error) error {
	if errors.Is(err, bbolt.ErrTimeout) || errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	return err
}

// stored is the on-disk form of a document.
type stored struct {
	Seq       uint64          `json:"seq"`
	Owner     string          `json:"owner"`
	CreatedAt int64           `json:"createdAt"`
	Body      json.RawMessage `json:"body"`
}

func (st stored) document(id string) *store.Document {
	return &store.Document{ID: id, Owner: st.Owner, CreatedAt: time.UnixMicro(st.CreatedAt).UTC(), Body: st.Body}
}

type collection struct {
	db   *bbolt.DB
	name []byte
}

// bucket returns the collection bucket, or nil if nothing was ever inserted.
func (c *collection) bucket(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket(documentsBucket).Bucket(c.name)
}

func (c *collection) Insert(ctx context.Context, d *store.Document) (*store.Document, error) {
	id := uuid.New().String()
	var out *store.Document
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(documentsBucket).CreateBucketIfNotExists(c.name)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		st := stored{Seq: seq, Owner: d.Owner, CreatedAt: d.CreatedAt.UTC().UnixMicro(), Body: d.Body}
		v, err := json.Marshal(st)
		if err != nil {
			return err
		}
		out = st.document(id)
		return b.Put([]byte(id), v)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (c *collection) Get(ctx context.Context, id string) (*store.Document, error) {
	var out *store.Document
	err := c.db.View(func(tx *bbolt.Tx) error {
		st, err := c.load(tx, id)
		if err != nil {
			return err
		}
		out = st.document(id)
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (c *collection) load(tx *bbolt.Tx, id string) (*stored, error) {
	b := c.bucket(tx)
	if b == nil {
		return nil, model.ErrNotFound
	}
	v := b.Get([]byte(id))
	if v == nil {
		return nil, model.ErrNotFound
	}
	var st stored
	if err := json.Unmarshal(v, &st); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &st, nil
}

func (c *collection) ListByOwner(ctx context.Context, owner string) ([]*store.Document, error) {
	type row struct {
		seq uint64
		doc *store.Document
	}
	var rows []row
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := c.bucket(tx)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var st stored
			if err := json.Unmarshal(v, &st); err != nil {
				return fmt.Errorf("decode document %s: %w", k, err)
			}
			if st.Owner == owner {
				rows = append(rows, row{seq: st.Seq, doc: st.document(string(k))})
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(err)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].doc.CreatedAt.Equal(rows[j].doc.CreatedAt) {
			return rows[i].doc.CreatedAt.After(rows[j].doc.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*store.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.doc)
	}
	return out, nil
}

func (c *collection) Replace(ctx context.Context, id string, body json.RawMessage) error {
	return translate(c.db.Update(func(tx *bbolt.Tx) error {
		st, err := c.load(tx, id)
		if err != nil {
			return err
		}
		st.Body = body
		v, err := json.Marshal(st)
		if err != nil {
			return err
		}
		return c.bucket(tx).Put([]byte(id), v)
	}))
}

func (c *collection) Delete(ctx context.Context, id string) error {
	return translate(c.db.Update(func(tx *bbolt.Tx) error {
		if _, err := c.load(tx, id); err != nil {
			return err
		}
		return c.bucket(tx).Delete([]byte(id))
	}))
}

// --- Users ---

type users struct{ db *bbolt.DB }

type storedUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    int64  `json:"createdAt"`
}

func (st storedUser) user() *model.User {
	return &model.User{
		ID:           st.ID,
		Username:     st.Username,
		Email:        st.Email,
		PasswordHash: st.PasswordHash,
		CreatedAt:    time.UnixMicro(st.CreatedAt).UTC(),
	}
}

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	st := storedUser{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC().UnixMicro(),
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	err := u.db.Update(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(usersIndex)
		if idx.Get([]byte(st.Email)) != nil {
			return fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		v, err := json.Marshal(st)
		if err != nil {
			return err
		}
		if err := tx.Bucket(usersBucket).Put([]byte(st.ID), v); err != nil {
			return err
		}
		return idx.Put([]byte(st.Email), []byte(st.ID))
	})
	if err != nil {
		return nil, translate(err)
	}
	return st.user(), nil
}

func (u *users) GetByID(ctx context.Context, id string) (*model.User, error) {
	var out *model.User
	err := u.db.View(func(tx *bbolt.Tx) error {
		var err error
		out, err = loadUser(tx, []byte(id))
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := u.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(usersIndex).Get([]byte(email))
		if id == nil {
			return model.ErrNotFound
		}
		var err error
		out, err = loadUser(tx, id)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func loadUser(tx *bbolt.Tx, id []byte) (*model.User, error) {
	v := tx.Bucket(usersBucket).Get(id)
	if v == nil {
		return nil, model.ErrNotFound
	}
	var st storedUser
	if err := json.Unmarshal(v, &st); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return st.user(), nil
}
