package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Database wraps the sql.DB handle shared by the repositories.
type Database struct {
	DB *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// EnsureSchema applies the embedded schema. Every statement is IF NOT
// EXISTS, so this is safe to run on every startup. The uniqueness
// constraints it creates are load-bearing for ingestion idempotency, not
// just performance.
func (d *Database) EnsureSchema(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping verifies the connection, for health checks.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.DB.Close()
}
