package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mediajournal/mediajournal/internal/store/sqldb"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            TEXT PRIMARY KEY,
        username      TEXT NOT NULL,
        email         TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at    BIGINT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS documents (
        seq        BIGSERIAL PRIMARY KEY,
        id         TEXT NOT NULL UNIQUE,
        collection TEXT NOT NULL,
        owner      TEXT NOT NULL,
        created_at BIGINT NOT NULL,
        body       TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS documents_owner_idx ON documents (collection, owner, created_at DESC)`,
}

// Dialect describes PostgreSQL for the shared SQL store.
var Dialect = sqldb.Dialect{
	Name:              "postgres",
	Schema:            schema,
	Rebind:            sqldb.Dollar,
	IsUniqueViolation: func(err error) bool { return sqlState(err) == "23505" },
	IsTransient: func(err error) bool {
		switch sqlState(err) {
		case "40001", "40P01", "53300", "57P03":
			return true
		}
		var ce *pgconn.ConnectError
		return errors.As(err, &ce)
	},
}

func sqlState(err error) string {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New connects to dsn and applies the schema.
func New(ctx context.Context, dsn string) (*sqldb.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := sqldb.New(db, Dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
