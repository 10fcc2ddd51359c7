package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/visitor-access/internal/persistence/migrations"
)

// RunMigrations brings the Postgres schema up to date. Applied versions are
// tracked by goose in its version table.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return runMigrations(ctx, db, goose.DialectPostgres, migrations.Postgres(), logger)
}

func runSQLiteMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	return runMigrations(ctx, db, goose.DialectSQLite3, migrations.SQLite(), logger)
}

func runMigrations(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS, logger *zap.Logger) error {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("init %s migrations: %w", dialect, err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	for _, res := range results {
		logger.Info("applying migration",
			zap.Int64("version", res.Source.Version),
			zap.String("file", res.Source.Path),
			zap.Duration("took", res.Duration))
	}
	logger.Info("migrations applied", zap.String("dialect", string(dialect)), zap.Int("count", len(results)))
	return nil
}
