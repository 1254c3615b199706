// Package port defines interfaces for external dependencies.
package port

import (
	"context"
	"errors"

	"github.com/bnema/upgate/internal/domain/entity"
)

// ErrUpdateCheckTransient marks a check failure caused by a temporary network condition.
var ErrUpdateCheckTransient = errors.New("transient update check failure")

// ErrDownloadCancelled is reported when a transfer is cancelled before completion.
var ErrDownloadCancelled = errors.New("download cancelled")

// EngineCallbacks are the asynchronous notifications an UpdateEngine delivers.
// Engines invoke them on goroutines they own; nil fields are skipped.
type EngineCallbacks struct {
	// OnUpdateDetected fires when a quiet check finds a newer version.
	OnUpdateDetected func(result entity.CheckResult)
	// OnDownloadProgress fires for each transfer tick. total may be <= 0 when unknown.
	OnDownloadProgress func(received, total int64)
	// OnDownloadError fires once when the transfer fails.
	OnDownloadError func(err error)
	// OnDownloadCancelled fires once when the transfer is cancelled.
	OnDownloadCancelled func()
	// OnDownloadFinished fires once with the engine's temporary artifact path.
	OnDownloadFinished func(tempPath string)
	// OnCloseRequested fires when the installer needs the application to exit.
	OnCloseRequested func()
}

// UpdateEngine fetches manifests, transfers artifacts and invokes the installer.
type UpdateEngine interface {
	// CheckForUpdatesQuietly queries the manifest without user interaction.
	// A nil result with a nil error means "no information".
	CheckForUpdatesQuietly(ctx context.Context) (*entity.CheckResult, error)

	// InitiateDownload starts an asynchronous transfer of the candidate.
	// Completion is reported through EngineCallbacks.
	InitiateDownload(ctx context.Context, candidate entity.Candidate) error

	// InstallUpdate invokes the platform installer for the artifact at localPath.
	InstallUpdate(ctx context.Context, candidate entity.Candidate, localPath string) error

	// SetCallbacks replaces the registered callbacks. The zero value detaches them.
	SetCallbacks(callbacks EngineCallbacks)
}
