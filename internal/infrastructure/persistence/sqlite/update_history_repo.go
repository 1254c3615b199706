// Package sqlite provides the SQLite-backed update history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/repository"
	"github.com/bnema/upgate/internal/logging"
)

const (
	insertUpdateRecord = `INSERT INTO update_history (version, outcome, detail, artifact_path, recorded_at)
VALUES (?, ?, ?, ?, ?)`

	listUpdateRecords = `SELECT id, version, outcome, detail, artifact_path, recorded_at
FROM update_history
ORDER BY recorded_at DESC, id DESC
LIMIT ?`

	pruneUpdateRecords = `DELETE FROM update_history
WHERE id NOT IN (
    SELECT id FROM update_history ORDER BY recorded_at DESC, id DESC LIMIT ?
)`
)

type updateHistoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewUpdateHistoryRepository creates a new SQLite-backed update history repository.
func NewUpdateHistoryRepository(db *sql.DB) repository.UpdateHistoryRepository {
	return &updateHistoryRepo{db: db, now: time.Now}
}

func (r *updateHistoryRepo) Record(ctx context.Context, record *entity.UpdateRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = r.now()
	}

	res, err := r.db.ExecContext(ctx, insertUpdateRecord,
		record.Version,
		string(record.Outcome),
		record.Detail,
		record.ArtifactPath,
		record.RecordedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert update record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read update record id: %w", err)
	}
	record.ID = id

	logging.FromContext(ctx).Debug().
		Int64("id", id).
		Str("version", record.Version).
		Str("outcome", string(record.Outcome)).
		Msg("update outcome recorded")
	return nil
}

func (r *updateHistoryRepo) List(ctx context.Context, limit int) ([]entity.UpdateRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, listUpdateRecords, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list update records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]entity.UpdateRecord, 0)
	for rows.Next() {
		var (
			rec        entity.UpdateRecord
			outcome    string
			recordedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Version, &outcome, &rec.Detail, &rec.ArtifactPath, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan update record: %w", err)
		}
		rec.Outcome = entity.UpdateOutcome(outcome)
		rec.RecordedAt = time.UnixMilli(recordedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate update records: %w", err)
	}
	return records, nil
}

func (r *updateHistoryRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, pruneUpdateRecords, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune update history: %w", err)
	}
	return res.RowsAffected()
}

// LazyUpdateHistoryRepository opens the database on first use.
type LazyUpdateHistoryRepository struct {
	provider port.DatabaseProvider
	repo     repository.UpdateHistoryRepository
	once     sync.Once
	initErr  error
}

// NewLazyUpdateHistoryRepository creates a lazy-loading update history repository.
func NewLazyUpdateHistoryRepository(provider port.DatabaseProvider) repository.UpdateHistoryRepository {
	return &LazyUpdateHistoryRepository{provider: provider}
}

func (r *LazyUpdateHistoryRepository) init(ctx context.Context) error {
	r.once.Do(func() {
		db, err := r.provider.DB(ctx)
		if err != nil {
			r.initErr = err
			return
		}
		r.repo = NewUpdateHistoryRepository(db)
	})
	return r.initErr
}

func (r *LazyUpdateHistoryRepository) Record(ctx context.Context, record *entity.UpdateRecord) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Record(ctx, record)
}

func (r *LazyUpdateHistoryRepository) List(ctx context.Context, limit int) ([]entity.UpdateRecord, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.List(ctx, limit)
}

func (r *LazyUpdateHistoryRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if err := r.init(ctx); err != nil {
		return 0, err
	}
	return r.repo.Prune(ctx, keep)
}
