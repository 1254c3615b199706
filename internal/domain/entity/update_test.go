package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/upgate/internal/domain/entity"
)

func TestLifecycleEvent_ArtifactOnlyOnStandby(t *testing.T) {
	standby := entity.NewStandbyEvent("2.0.0", "/tmp/app-2.0.0.tar.gz")
	assert.Equal(t, entity.LifecycleDownloadStandby, standby.State())
	assert.Equal(t, "/tmp/app-2.0.0.tar.gz", standby.Artifact())
	assert.Equal(t, "2.0.0", standby.Version())

	available := entity.NewLifecycleEvent(entity.LifecycleUpdateAvailable, "2.0.0")
	assert.Empty(t, available.Artifact())

	// DownloadStandby requires an artifact, so the generic constructor refuses it.
	coerced := entity.NewLifecycleEvent(entity.LifecycleDownloadStandby, "2.0.0")
	assert.Equal(t, entity.LifecycleIdle, coerced.State())
}

func TestLifecycleEvent_Intents(t *testing.T) {
	ev := entity.NewLifecycleEvent(entity.LifecycleUpdateAvailable, "2.0.0")
	assert.False(t, ev.CancelRequested())
	ev.RequestCancel()
	assert.True(t, ev.CancelRequested())

	ev.DeferInstall()
	assert.False(t, ev.ShouldWait(), "wait is only meaningful on standby")

	standby := entity.NewStandbyEvent("2.0.0", "/tmp/a")
	standby.DeferInstall()
	assert.True(t, standby.ShouldWait())
}

func TestProgressEvent_Constructors(t *testing.T) {
	assert.Equal(t, 0, entity.NewProgressEvent(-5).Percent)
	assert.Equal(t, 100, entity.NewProgressEvent(250).Percent)
	assert.Equal(t, 42, entity.NewProgressEvent(42).Percent)

	cause := errors.New("network timeout")
	failed := entity.NewProgressError(cause)
	assert.Equal(t, entity.DownloadStateError, failed.State)
	assert.ErrorIs(t, failed.Cause, cause)

	unknown := entity.NewProgressError(nil)
	assert.ErrorIs(t, unknown.Cause, entity.ErrUnknownTransferFailure)

	cancelled := entity.NewProgressCancelled()
	assert.Equal(t, entity.DownloadStateCancelled, cancelled.State)
	assert.NoError(t, cancelled.Cause)
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name     string
		received int64
		total    int64
		expected int
	}{
		{"unknown total", 10, 0, 0},
		{"negative total", 10, -1, 0},
		{"start", 0, 100, 0},
		{"half", 512, 1024, 50},
		{"rounds down", 999, 1000, 99},
		{"complete", 1024, 1024, 100},
		{"overshoot", 2048, 1024, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, entity.PercentOf(tt.received, tt.total))
		})
	}
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "available", entity.LifecycleUpdateAvailable.String())
	assert.Equal(t, "standby", entity.LifecycleDownloadStandby.String())
	assert.Equal(t, "not-available", entity.LifecycleNotAvailable.String())
	assert.Equal(t, "unknown", entity.LifecycleState(99).String())
	assert.Equal(t, "error", entity.DownloadStateError.String())
	assert.Equal(t, "unknown", entity.DownloadState(99).String())
}

func TestCheckResult_Best(t *testing.T) {
	var nilResult *entity.CheckResult
	_, ok := nilResult.Best()
	assert.False(t, ok)

	empty := &entity.CheckResult{HasUpdates: true}
	_, ok = empty.Best()
	assert.False(t, ok)

	result := &entity.CheckResult{
		HasUpdates: true,
		Candidates: []entity.Candidate{{Version: "2.0.0"}, {Version: "1.9.0"}},
	}
	best, ok := result.Best()
	assert.True(t, ok)
	assert.Equal(t, "2.0.0", best.Version)
}
