// Package storage keeps ledger collections in a SQL table, one row per key.
// SQLite and Postgres share the schema and differ only in placeholders.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"saldo/internal/ledger"
	applog "saldo/internal/log"
)

type dialect struct {
	name   string
	get    string
	upsert string
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		get:  `SELECT value FROM ledger_kv WHERE key = ?`,
		upsert: `INSERT INTO ledger_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
	postgresDialect = dialect{
		name: "postgres",
		get:  `SELECT value FROM ledger_kv WHERE key = $1`,
		upsert: `INSERT INTO ledger_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
)

// SQLRepository implements ledger.KV over database/sql.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLRepository{db: db, dialect: sqliteDialect}, nil
}

func NewPostgresRepository(ctx context.Context, dsn string) (*SQLRepository, error) {
	if err := RunPostgresMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLRepository{db: db, dialect: postgresDialect}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements ledger.KV.
func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put implements ledger.KV.
func (r *SQLRepository) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.upsert, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Ledger collection stored",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldBackend, r.dialect.name,
		applog.FieldKey, key,
		"bytes", len(value))
	return nil
}
