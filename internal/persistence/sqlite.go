package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite stores documents in a local database file, the default backend for
// a single front-desk installation.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies migrations.
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := runSQLiteMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("opened sqlite store", zap.String("path", path))
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) PutAll(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values)*2)
	for _, key := range sortedKeys(values) {
		placeholders = append(placeholders, "(?, ?, CURRENT_TIMESTAMP)")
		args = append(args, key, values[key])
	}
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
