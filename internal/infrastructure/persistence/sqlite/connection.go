package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bnema/upgate/internal/logging"
	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary
)

const historyDirPerm = 0o700

// errNoHistoryPath is returned when history is enabled without a database file.
var errNoHistoryPath = errors.New("history database path is empty")

// historyPragmas are carried in the DSN so every pooled connection gets them,
// not only the first one.
var historyPragmas = []string{
	"journal_mode(wal)",  // watch appends while history reads
	"synchronous(normal)",
	"busy_timeout(3000)",
	"trusted_schema(off)",
}

// historyDSN builds a file: URI for path with the history pragmas attached.
func historyDSN(path string) string {
	q := url.Values{}
	for _, p := range historyPragmas {
		q.Add("_pragma", p)
	}
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String()
}

// OpenHistory opens the update history database at path, creating the
// parent directory when missing, and migrates the schema to the newest version.
func OpenHistory(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, errNoHistoryPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve history path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), historyDirPerm); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", historyDSN(abs))
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One writer at a time; WAL lets a reader run beside it.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history database %s: %w", abs, err)
	}
	if err := MigrateHistory(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.FromContext(ctx).Debug().Str("path", abs).Msg("history database ready")
	return db, nil
}

// Close closes a history database opened with OpenHistory. A nil db is a no-op.
func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
