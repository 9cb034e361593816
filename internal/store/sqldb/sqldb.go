// Package sqldb implements store.Store on database/sql. Driver packages supply
// a Dialect and an opened *sql.DB.
package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediajournal/mediajournal/internal/model"
	"github.com/mediajournal/mediajournal/internal/store"
)

// Dialect captures what differs between SQL backends.
type Dialect struct {
	Name string
	// Schema statements are run in order by Migrate. They must be idempotent.
	Schema []string
	// Rebind rewrites '?' placeholders into the backend's form. Nil keeps them.
	Rebind func(query string) string
	// IsUniqueViolation reports a unique constraint failure.
	IsUniqueViolation func(err error) bool
	// IsTransient reports backend-specific retryable failures (busy, locked).
	IsTransient func(err error) bool
}

// Dollar rewrites '?' placeholders as $1, $2, ... for PostgreSQL.
func Dollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store is the database/sql backed store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db. Call Migrate before first use on a fresh database.
func New(db *sql.DB, d Dialect) *Store { return &Store{db: db, dialect: d} }

// Migrate creates tables and indexes that do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *Store) Users() store.Users { return &users{s: s} }

func (s *Store) Collection(name string) store.Collection { return &collection{s: s, name: name} }

func (s *Store) Close() error { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.translate(s.db.PingContext(ctx))
}

// DB exposes the underlying handle for tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) q(query string) string {
	if s.dialect.Rebind == nil {
		return query
	}
	return s.dialect.Rebind(query)
}

// translate maps driver errors onto the model taxonomy.
func (s *Store) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	case isTransient(err) || (s.dialect.IsTransient != nil && s.dialect.IsTransient(err)):
		return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

func micros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }

// --- Documents ---

type collection struct {
	s    *Store
	name string
}

func (c *collection) Insert(ctx context.Context, d *store.Document) (*store.Document, error) {
	out := *d
	out.ID = uuid.New().String()
	_, err := c.s.db.ExecContext(ctx, c.s.q(`
        INSERT INTO documents (id, collection, owner, created_at, body)
        VALUES (?,?,?,?,?)
    `), out.ID, c.name, out.Owner, micros(out.CreatedAt), string(out.Body))
	if err != nil {
		return nil, c.s.translate(err)
	}
	out.CreatedAt = fromMicros(micros(out.CreatedAt))
	return &out, nil
}

func (c *collection) Get(ctx context.Context, id string) (*store.Document, error) {
	row := c.s.db.QueryRowContext(ctx, c.s.q(`
        SELECT id, owner, created_at, body FROM documents WHERE collection=? AND id=?
    `), c.name, id)
	d, err := scanDocument(row)
	if err != nil {
		return nil, c.s.translate(err)
	}
	return d, nil
}

func (c *collection) ListByOwner(ctx context.Context, owner string) ([]*store.Document, error) {
	rows, err := c.s.db.QueryContext(ctx, c.s.q(`
        SELECT id, owner, created_at, body FROM documents
        WHERE collection=? AND owner=?
        ORDER BY created_at DESC, seq DESC
    `), c.name, owner)
	if err != nil {
		return nil, c.s.translate(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*store.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, c.s.translate(err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, c.s.translate(err)
	}
	return out, nil
}

func (c *collection) Replace(ctx context.Context, id string, body json.RawMessage) error {
	res, err := c.s.db.ExecContext(ctx, c.s.q(`
        UPDATE documents SET body=? WHERE collection=? AND id=?
    `), string(body), c.name, id)
	return c.s.affectedOne(res, err)
}

func (c *collection) Delete(ctx context.Context, id string) error {
	res, err := c.s.db.ExecContext(ctx, c.s.q(`
        DELETE FROM documents WHERE collection=? AND id=?
    `), c.name, id)
	return c.s.affectedOne(res, err)
}

func (s *Store) affectedOne(res sql.Result, err error) error {
	if err != nil {
		return s.translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.translate(err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (*store.Document, error) {
	var (
		d       store.Document
		created int64
		body    string
	)
	if err := sc.Scan(&d.ID, &d.Owner, &created, &body); err != nil {
		return nil, err
	}
	d.CreatedAt = fromMicros(created)
	d.Body = json.RawMessage(body)
	return &d, nil
}

// --- Users ---

type users struct{ s *Store }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	_, err := u.s.db.ExecContext(ctx, u.s.q(`
        INSERT INTO users (id, username, email, password_hash, created_at)
        VALUES (?,?,?,?,?)
    `), out.ID, out.Username, out.Email, out.PasswordHash, micros(out.CreatedAt))
	if err != nil {
		return nil, u.s.translate(err)
	}
	out.CreatedAt = fromMicros(micros(out.CreatedAt))
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.get(ctx, "id", id)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.get(ctx, "email", email)
}

func (u *users) get(ctx context.Context, column, value string) (*model.User, error) {
	row := u.s.db.QueryRowContext(ctx, u.s.q(`
        SELECT id, username, email, password_hash, created_at FROM users WHERE `+column+`=?
    `), value)
	var (
		out     model.User
		created int64
	)
	if err := row.Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &created); err != nil {
		return nil, u.s.translate(err)
	}
	out.CreatedAt = fromMicros(created)
	return &out, nil
}
