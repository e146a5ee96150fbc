package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPostgresTable = "auth_records"

// Postgres is a Store implementation backed by a single records table.
//
// Each record is one row: key text primary key, fields jsonb (a flat
// string-to-string object), updated_at timestamptz.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// PostgresOption customizes the Postgres store.
type PostgresOption func(*Postgres)

// WithTableName overrides the default records table name.
func WithTableName(name string) PostgresOption {
	return func(p *Postgres) {
		if name != "" {
			p.table = name
		}
	}
}

// NewPostgres creates a postgres-backed store and ensures the records
// table exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, opts ...PostgresOption) (*Postgres, error) {
	p := &Postgres{pool: pool, table: defaultPostgresTable}
	for _, opt := range opts {
		opt(p)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		fields JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, p.table)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, err
	}

	return p, nil
}

// Get returns the record stored under key, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, key string) (Record, error) {
	query := fmt.Sprintf("SELECT fields FROM %s WHERE key = $1", p.table)

	var raw []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Put stores the record under key, replacing any previous record.
func (p *Postgres) Put(ctx context.Context, key string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (key, fields, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()`, p.table)

	_, err = p.pool.Exec(ctx, query, key, raw)
	return err
}

// Delete removes the record under key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE key = $1", p.table)

	_, err := p.pool.Exec(ctx, query, key)
	return err
}

// Close implements io.Closer; the pool is owned by the caller.
func (p *Postgres) Close() error {
	return nil
}
