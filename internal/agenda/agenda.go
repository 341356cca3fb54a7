// Package agenda runs read-only searches against the Agenda app's SQLite store.
package agenda

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/agenda-search/internal/apperr"
)

const (
	defaultTimeout = 5 * time.Second
	busyTimeoutMS  = 5000
)

// DB wraps a sql.DB opened on an Agenda store.
type DB struct {
	conn    *sql.DB
	timeout time.Duration
	limit   int
}

// Option configures a DB.
type Option func(*DB)

// WithTimeout bounds every query. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.timeout = d
		}
	}
}

// WithLimit caps the rows returned per search. Zero means no cap.
func WithLimit(n int) Option {
	return func(db *DB) {
		if n >= 0 {
			db.limit = n
		}
	}
}

// Open opens the store at path read-only and checks that it answers.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", path, busyTimeoutMS)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("agenda: open db: %w: %w", apperr.ErrEngineUnavailable, err)
	}
	db := New(conn, opts...)
	if err := db.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing connection.
func New(conn *sql.DB, opts ...Option) *DB {
	db := &DB{conn: conn, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Ping checks that the store can be queried.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("agenda: ping: %w: %w", apperr.ErrEngineUnavailable, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
