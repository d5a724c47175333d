// AngelaMos | 2026
// postgres.go

package kv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/jeddrive/internal/core"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type PostgresStore struct {
	db        *sqlx.DB
	namespace string
}

func NewPostgresStore(db *sqlx.DB, namespace string) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace}
}

// Migrate creates or upgrades the kv_entries table.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	driver, err := migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`

	var value []byte
	err := p.db.GetContext(ctx, &value, query, p.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return value, nil
}

const upsertQuery = `
	INSERT INTO kv_entries (namespace, key, value, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (namespace, key)
	DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertQuery, p.namespace, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) SetMulti(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	return core.InTx(ctx, p.db, func(tx *sqlx.Tx) error {
		for k, v := range entries {
			if _, err := tx.ExecContext(ctx, upsertQuery, p.namespace, k, v); err != nil {
				return fmt.Errorf("set %s: %w", k, err)
			}
		}
		return nil
	})
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`

	if _, err := p.db.ExecContext(ctx, query, p.namespace, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	query := `DELETE FROM kv_entries WHERE namespace = $1`

	if _, err := p.db.ExecContext(ctx, query, p.namespace); err != nil {
		return fmt.Errorf("clear namespace: %w", err)
	}
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

var _ Store = (*PostgresStore)(nil)
