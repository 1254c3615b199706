package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/pressly/goose/v3"

	"github.com/bnema/upgate/internal/logging"
)

//go:embed migrations/*.sql
var historyMigrations embed.FS

func historyMigrator(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(historyMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("load history migrations: %w", err)
	}
	return p, nil
}

// MigrateHistory applies every pending update_history migration.
func MigrateHistory(ctx context.Context, db *sql.DB) error {
	p, err := historyMigrator(db)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}

	log := logging.FromContext(ctx)
	if len(results) == 0 {
		log.Debug().Msg("history schema up to date")
		return nil
	}
	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Str("file", path.Base(r.Source.Path)).
			Dur("took", r.Duration).
			Msg("history schema migrated")
	}
	return nil
}

// SchemaVersion returns the newest applied history migration.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	p, err := historyMigrator(db)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
