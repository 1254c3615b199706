package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/upgate/internal/application/usecase"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/repository/mocks"
)

func TestRecordHistoryUseCase_Execute(t *testing.T) {
	t.Run("records then prunes", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().Record(mock.Anything, mock.MatchedBy(func(r *entity.UpdateRecord) bool {
			return r.Version == "2.0.0" && r.Outcome == entity.UpdateOutcomeInstalled
		})).Return(nil).Once()
		repo.EXPECT().Prune(mock.Anything, 50).Return(int64(3), nil).Once()

		uc := usecase.NewRecordHistoryUseCase(repo, 50)
		err := uc.Execute(context.Background(), entity.UpdateRecord{Version: "2.0.0", Outcome: entity.UpdateOutcomeInstalled})
		require.NoError(t, err)
	})

	t.Run("pruning disabled", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()

		uc := usecase.NewRecordHistoryUseCase(repo, 0)
		require.NoError(t, uc.Execute(context.Background(), entity.UpdateRecord{Outcome: entity.UpdateOutcomeNotAvailable}))
	})

	t.Run("rejects empty outcome", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)

		uc := usecase.NewRecordHistoryUseCase(repo, 10)
		assert.Error(t, uc.Execute(context.Background(), entity.UpdateRecord{Version: "2.0.0"}))
	})

	t.Run("record error skips prune", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().Record(mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		uc := usecase.NewRecordHistoryUseCase(repo, 10)
		err := uc.Execute(context.Background(), entity.UpdateRecord{Outcome: entity.UpdateOutcomeFailed})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestRecordHistoryUseCase_HandlerSwallowsErrors(t *testing.T) {
	repo := mocks.NewMockUpdateHistoryRepository(t)
	repo.EXPECT().Record(mock.Anything, mock.Anything).Return(nil).Once()
	repo.EXPECT().Prune(mock.Anything, 5).Return(int64(0), errors.New("locked")).Once()

	handler := usecase.NewRecordHistoryUseCase(repo, 5).Handler(context.Background())

	assert.NotPanics(t, func() {
		handler(entity.UpdateRecord{Version: "2.0.0", Outcome: entity.UpdateOutcomeStandby})
	})
}

func TestListHistoryUseCase_Execute(t *testing.T) {
	records := []entity.UpdateRecord{
		{ID: 4, Version: "2.0.0", Outcome: entity.UpdateOutcomeInstalled},
		{ID: 3, Version: "2.0.0", Outcome: entity.UpdateOutcomeStandby},
		{ID: 2, Version: "1.9.0", Outcome: entity.UpdateOutcomeInstalled},
		{ID: 1, Version: "", Outcome: entity.UpdateOutcomeNotAvailable},
	}

	t.Run("passes limit through", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().List(mock.Anything, 2).Return(records[:2], nil).Once()

		out, err := usecase.NewListHistoryUseCase(repo).Execute(context.Background(), usecase.ListHistoryInput{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, out.Records, 2)
	})

	t.Run("filters by outcome before limiting", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().List(mock.Anything, 0).Return(append([]entity.UpdateRecord(nil), records...), nil).Once()

		out, err := usecase.NewListHistoryUseCase(repo).Execute(context.Background(), usecase.ListHistoryInput{
			Limit:   1,
			Outcome: entity.UpdateOutcomeInstalled,
		})
		require.NoError(t, err)
		require.Len(t, out.Records, 1)
		assert.Equal(t, int64(4), out.Records[0].ID)
	})

	t.Run("wraps repository error", func(t *testing.T) {
		repo := mocks.NewMockUpdateHistoryRepository(t)
		repo.EXPECT().List(mock.Anything, 0).Return(nil, errors.New("no such table")).Once()

		_, err := usecase.NewListHistoryUseCase(repo).Execute(context.Background(), usecase.ListHistoryInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no such table")
	})
}
