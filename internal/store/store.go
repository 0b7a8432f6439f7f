// Package store provides PostgreSQL persistence for users, guests, events,
// and event attendance. All queries run against a DBTX so the same code works
// inside and outside a transaction.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries runs statements against a DBTX.
type Queries struct {
	db DBTX
}

// New returns Queries bound to the given DBTX.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Store owns the connection pool and exposes Queries plus transaction control.
type Store struct {
	pool *pgxpool.Pool
	*Queries
}

// NewStore creates a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, Queries: New(pool)}
}

// WithTx runs fn inside a transaction. If fn returns an error the transaction
// is rolled back and nothing fn wrote survives; otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS guests (
	id                   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	user_id              BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	prefix               TEXT NOT NULL DEFAULT '',
	first_name           TEXT NOT NULL,
	middle_name          TEXT NOT NULL DEFAULT '',
	last_name            TEXT NOT NULL,
	nickname             TEXT NOT NULL DEFAULT '',
	descriptor           TEXT NOT NULL DEFAULT '',
	email                TEXT NOT NULL DEFAULT '',
	phone                TEXT NOT NULL DEFAULT '',
	organization         TEXT NOT NULL DEFAULT '',
	title                TEXT NOT NULL DEFAULT '',
	external_id          TEXT NOT NULL DEFAULT '',
	relationship_manager TEXT NOT NULL DEFAULT '',
	donor_capacity       TEXT NOT NULL DEFAULT 'TBD',
	bio                  TEXT NOT NULL DEFAULT '',
	notes                TEXT NOT NULL DEFAULT '',
	photo_filename       TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_guests_user_name
	ON guests (user_id, lower(last_name), lower(first_name));
CREATE INDEX IF NOT EXISTS idx_guests_email ON guests (lower(email));

CREATE TABLE IF NOT EXISTS events (
	id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name         TEXT NOT NULL,
	starts_at    TIMESTAMPTZ NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	external_ref TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attendance (
	id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	guest_id      BIGINT NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
	event_id      BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	attended      BOOLEAN NOT NULL DEFAULT FALSE,
	notes         TEXT NOT NULL DEFAULT '',
	UNIQUE (guest_id, event_id)
);
`
