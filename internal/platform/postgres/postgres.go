// Package postgres owns the shared connection pool to the stored-procedure
// backend. The pool is created once in main and injected by reference into the
// stores that need it; it is never a package-level singleton.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps the sqlx pool with health checking.
type DB struct {
	*sqlx.DB
}

// Open connects to PostgreSQL and verifies connectivity before returning.
func Open(dsn string) (*DB, error) {
	pool, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &DB{DB: pool}, nil
}

// Health checks connectivity. database/sql re-establishes broken connections
// on its own, so a successful ping means the pool is usable again.
func (d *DB) Health(ctx context.Context) error {
	return d.PingContext(ctx)
}

// Close releases the pool.
func (d *DB) Close() error {
	return d.DB.Close()
}
