// Package repository defines persistence interfaces for domain entities.
package repository

import (
	"context"

	"github.com/bnema/upgate/internal/domain/entity"
)

// UpdateHistoryRepository persists lifecycle outcomes.
type UpdateHistoryRepository interface {
	// Record appends a record and fills in its ID and RecordedAt.
	Record(ctx context.Context, record *entity.UpdateRecord) error

	// List returns the most recent records first, at most limit of them.
	// A non-positive limit returns every record.
	List(ctx context.Context, limit int) ([]entity.UpdateRecord, error)

	// Prune keeps the newest keep records and returns how many were deleted.
	Prune(ctx context.Context, keep int) (int64, error)
}
