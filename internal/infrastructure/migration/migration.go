package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"nextstep-cv/pkg/logger"
)

// RunMigrations brings the submissions log schema up to date. Every step is
// idempotent so it runs on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) error {
	log.Info("Starting database migrations")

	migrations := []Migration{
		{Name: "create_submissions", Up: createSubmissions},
		{Name: "add_submissions_username_index", Up: func(ctx context.Context, pool *pgxpool.Pool) error {
			return addUsernameIndex(ctx, pool, log)
		}},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			log.Error("Migration failed", err, zap.String("name", m.Name))
			return err
		}
		log.Info("Migration completed", zap.String("name", m.Name))
	}

	log.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

func createSubmissions(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			id              UUID PRIMARY KEY,
			username        TEXT NOT NULL,
			status          TEXT NOT NULL,
			payload_version TEXT NOT NULL,
			size_bytes      INTEGER NOT NULL DEFAULT 0,
			error           TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func addUsernameIndex(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) error {
	if _, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS submissions_username_created_idx ON submissions (username, created_at DESC);`); err != nil {
		// an index is an optimisation; carry on without it
		log.Warn("Error creating submissions index", zap.Error(err))
	}
	return nil
}
