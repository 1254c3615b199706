package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/repository"
	"github.com/bnema/upgate/internal/logging"
)

// RecordHistoryUseCase persists lifecycle outcomes and keeps the table bounded.
type RecordHistoryUseCase struct {
	repo       repository.UpdateHistoryRepository
	maxEntries int
}

// NewRecordHistoryUseCase creates a new RecordHistoryUseCase.
// A non-positive maxEntries disables pruning.
func NewRecordHistoryUseCase(repo repository.UpdateHistoryRepository, maxEntries int) *RecordHistoryUseCase {
	return &RecordHistoryUseCase{
		repo:       repo,
		maxEntries: maxEntries,
	}
}

// Execute records one outcome, then prunes the oldest rows.
func (uc *RecordHistoryUseCase) Execute(ctx context.Context, record entity.UpdateRecord) error {
	if record.Outcome == "" {
		return fmt.Errorf("update record has no outcome")
	}

	if err := uc.repo.Record(ctx, &record); err != nil {
		return fmt.Errorf("failed to record update outcome: %w", err)
	}
	if uc.maxEntries <= 0 {
		return nil
	}

	deleted, err := uc.repo.Prune(ctx, uc.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune update history: %w", err)
	}
	if deleted > 0 {
		logging.FromContext(ctx).Debug().
			Int64("deleted", deleted).
			Int("keep", uc.maxEntries).
			Msg("pruned update history")
	}
	return nil
}

// Handler adapts Execute to the orchestrator's outcome callback.
// Failures are logged; history is best effort and never blocks an update.
func (uc *RecordHistoryUseCase) Handler(ctx context.Context) func(entity.UpdateRecord) {
	return func(record entity.UpdateRecord) {
		if err := uc.Execute(ctx, record); err != nil {
			logging.FromContext(ctx).Warn().
				Err(err).
				Str("outcome", string(record.Outcome)).
				Msg("update history not recorded")
		}
	}
}
