package usecase

import (
	"context"
	"errors"

	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/build"
	"github.com/bnema/upgate/internal/logging"
)

// CheckUpdateInput holds the input for the check update use case.
type CheckUpdateInput struct{}

// CheckUpdateOutput holds the result of the update check.
type CheckUpdateOutput struct {
	// UpdateAvailable is true if a newer version exists.
	UpdateAvailable bool
	// CurrentVersion is the version of the running binary.
	CurrentVersion string
	// LatestVersion is the best available version, or CurrentVersion.
	LatestVersion string
	// DownloadURL is the direct download URL of the best candidate.
	DownloadURL string
	// ReleaseNotes of the best candidate.
	ReleaseNotes string
	// Candidates is the number of newer versions offered.
	Candidates int
}

// CheckUpdateUseCase asks the engine about updates without downloading anything.
// It backs `upgate check --dry-run`.
type CheckUpdateUseCase struct {
	engine    port.UpdateEngine
	buildInfo build.Info
}

// NewCheckUpdateUseCase creates a new check update use case.
func NewCheckUpdateUseCase(engine port.UpdateEngine, buildInfo build.Info) *CheckUpdateUseCase {
	return &CheckUpdateUseCase{
		engine:    engine,
		buildInfo: buildInfo,
	}
}

// Execute checks for available updates.
func (uc *CheckUpdateUseCase) Execute(ctx context.Context, _ CheckUpdateInput) (*CheckUpdateOutput, error) {
	log := logging.FromContext(ctx)

	noUpdate := &CheckUpdateOutput{
		CurrentVersion: uc.buildInfo.Version,
		LatestVersion:  uc.buildInfo.Version,
	}

	result, err := uc.engine.CheckForUpdatesQuietly(ctx)
	if err != nil {
		if errors.Is(err, port.ErrUpdateCheckTransient) {
			log.Debug().Err(err).Msg("transient update check failure")
			return noUpdate, nil
		}
		log.Warn().Err(err).Msg("update check failed")
		return nil, err
	}
	if result == nil || !result.HasUpdates {
		return noUpdate, nil
	}

	out := &CheckUpdateOutput{
		UpdateAvailable: true,
		CurrentVersion:  uc.buildInfo.Version,
		LatestVersion:   uc.buildInfo.Version,
		Candidates:      len(result.Candidates),
	}
	if result.CurrentVersion != "" {
		out.CurrentVersion = result.CurrentVersion
	}
	if best, ok := result.Best(); ok {
		out.LatestVersion = best.Version
		out.DownloadURL = best.DownloadURL
		out.ReleaseNotes = best.ReleaseNotes
	}

	log.Debug().
		Str("current", out.CurrentVersion).
		Str("latest", out.LatestVersion).
		Int("candidates", out.Candidates).
		Msg("update check completed")

	return out, nil
}
