// Package postgres persists slots in a PostgreSQL table through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/manaforge/internal/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS storage_slots (
	slot_key   TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectValue = `SELECT value FROM storage_slots WHERE slot_key = $1`
	upsertValue = `INSERT INTO storage_slots (slot_key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot_key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
)

// Open connects to PostgreSQL and ensures the slot table exists.
func Open(ctx context.Context, dsn string, log logger.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create storage_slots: %w", err)
	}

	if log != nil {
		log.Info("postgres connection established")
	}
	return db, nil
}

// Slot is a single row keyed by the slot name.
type Slot struct {
	db  *sql.DB
	key string
}

func New(db *sql.DB, key string) *Slot {
	return &Slot{db: db, key: key}
}

func (s *Slot) Key() string { return s.key }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectValue, s.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	return []byte(value), nil
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertValue, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Slot) Close() error { return s.db.Close() }
