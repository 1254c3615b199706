package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/repository"
)

// ListHistoryInput contains input parameters for listing history.
type ListHistoryInput struct {
	// Limit caps the number of records; zero or less returns all of them.
	Limit int
	// Outcome filters on a single outcome when set.
	Outcome entity.UpdateOutcome
}

// ListHistoryOutput contains the records, newest first.
type ListHistoryOutput struct {
	Records []entity.UpdateRecord
}

// ListHistoryUseCase reads recorded lifecycle outcomes.
type ListHistoryUseCase struct {
	repo repository.UpdateHistoryRepository
}

// NewListHistoryUseCase creates a new ListHistoryUseCase.
func NewListHistoryUseCase(repo repository.UpdateHistoryRepository) *ListHistoryUseCase {
	return &ListHistoryUseCase{repo: repo}
}

// Execute lists records, applying the outcome filter before the limit.
func (uc *ListHistoryUseCase) Execute(ctx context.Context, input ListHistoryInput) (*ListHistoryOutput, error) {
	limit := input.Limit
	if input.Outcome != "" {
		limit = 0
	}

	records, err := uc.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list update history: %w", err)
	}

	if input.Outcome != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Outcome == input.Outcome {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
		if input.Limit > 0 && len(records) > input.Limit {
			records = records[:input.Limit]
		}
	}

	return &ListHistoryOutput{Records: records}, nil
}
