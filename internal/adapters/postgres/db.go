package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing for a single-region survey map: reads dominate and the like
// consumer holds at most one connection per in-flight message.
const (
	maxConns        = 20
	minConns        = 2
	maxConnIdleTime = 5 * time.Minute
)

// DB is the shared pgx pool for artworks, comments and likes.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens the pool and checks that PostGIS is installed, since nearby
// search and artwork upserts depend on geography columns.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	db := &DB{Pool: pool}

	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := db.PostGISVersion(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgis unavailable (run migrations first): %w", err)
	}
	return db, nil
}

// PostGISVersion returns the installed PostGIS version.
func (db *DB) PostGISVersion(ctx context.Context) (string, error) {
	var v string
	err := db.Pool.QueryRow(ctx, "SELECT postgis_lib_version()").Scan(&v)
	return v, err
}

func (db *DB) Stat() *pgxpool.Stat { return db.Pool.Stat() }

func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func (db *DB) Close() { db.Pool.Close() }
