// Package db opens the read-only PostgreSQL pool that backs resume lookups.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName identifies the agent's sessions in pg_stat_activity.
const ApplicationName = "outreach-agent"

// maxConns caps the pool size.
const maxConns = 4

// Querier is what the resume store needs from a pool.
// *pgxpool.Pool and pgxmock pools both satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DB holds the resume database pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a pool whose sessions default to read-only transactions and
// checks that the database answers.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	cfg, err := poolConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func poolConfig(databaseURL string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > maxConns {
		cfg.MaxConns = maxConns
	}
	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = ApplicationName
	}
	params["default_transaction_read_only"] = "on"
	return cfg, nil
}

// Querier returns the pool.
func (db *DB) Querier() Querier {
	return db.pool
}

// Close releases every connection.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
