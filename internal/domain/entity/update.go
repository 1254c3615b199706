// Package entity defines domain entities for upgate.
package entity

import (
	"sync/atomic"
	"time"
)

// Candidate describes one available version offered by the update engine.
type Candidate struct {
	// Version is the semantic version of the release (without a leading "v").
	Version string
	// DownloadURL is the direct download URL of the release artifact.
	DownloadURL string
	// SHA256 is the expected hex checksum of the artifact (optional).
	SHA256 string
	// ReleaseNotes contains the release changelog (optional).
	ReleaseNotes string
	// PublishedAt is when the release was published.
	PublishedAt time.Time
}

// IsZero reports whether the candidate carries no data.
func (c Candidate) IsZero() bool {
	return c.Version == "" && c.DownloadURL == ""
}

// CheckResult holds the outcome of a quiet update check.
type CheckResult struct {
	// HasUpdates is true if the engine found a newer version.
	HasUpdates bool
	// CurrentVersion is the version of the running application.
	CurrentVersion string
	// Candidates is ordered best first. It may be empty even when HasUpdates is true.
	Candidates []Candidate
}

// Best returns the preferred candidate, if any.
func (r *CheckResult) Best() (Candidate, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// LifecycleState is a point in the update timeline as seen by the host.
type LifecycleState int

const (
	// LifecycleIdle means no update activity is in progress.
	LifecycleIdle LifecycleState = iota
	// LifecycleChecking means a quiet check is running.
	LifecycleChecking
	// LifecycleUpdateAvailable means the engine detected a newer version.
	LifecycleUpdateAvailable
	// LifecycleDownloadStandby means the artifact is downloaded and install is about to start.
	LifecycleDownloadStandby
	// LifecycleNotAvailable means the check found nothing to install.
	LifecycleNotAvailable
)

// String returns a human-readable string for the lifecycle state.
func (s LifecycleState) String() string {
	switch s {
	case LifecycleIdle:
		return "idle"
	case LifecycleChecking:
		return "checking"
	case LifecycleUpdateAvailable:
		return "available"
	case LifecycleDownloadStandby:
		return "standby"
	case LifecycleNotAvailable:
		return "not-available"
	default:
		return "unknown"
	}
}

// LifecycleEvent describes one transition on the status stream.
//
// All fields are fixed at construction. Subscribers may only record intent
// through RequestCancel and DeferInstall while the event is being delivered.
type LifecycleEvent struct {
	state      LifecycleState
	version    string
	artifact   string
	occurredAt time.Time

	cancelRequested atomic.Bool
	shouldWait      atomic.Bool
}

// NewLifecycleEvent creates an event for any state other than DownloadStandby.
func NewLifecycleEvent(state LifecycleState, version string) *LifecycleEvent {
	if state == LifecycleDownloadStandby {
		state = LifecycleIdle
	}
	return &LifecycleEvent{
		state:      state,
		version:    version,
		occurredAt: time.Now(),
	}
}

// NewStandbyEvent creates a DownloadStandby event carrying the downloaded artifact.
func NewStandbyEvent(version, artifact string) *LifecycleEvent {
	return &LifecycleEvent{
		state:      LifecycleDownloadStandby,
		version:    version,
		artifact:   artifact,
		occurredAt: time.Now(),
	}
}

// State returns the lifecycle state.
func (e *LifecycleEvent) State() LifecycleState { return e.state }

// Version returns the version the event refers to, or "".
func (e *LifecycleEvent) Version() string { return e.version }

// Artifact returns the downloaded artifact path. Empty unless State is DownloadStandby.
func (e *LifecycleEvent) Artifact() string { return e.artifact }

// OccurredAt returns when the event was created.
func (e *LifecycleEvent) OccurredAt() time.Time { return e.occurredAt }

// RequestCancel vetoes the transition that follows this event.
// Only honored when set during synchronous delivery.
func (e *LifecycleEvent) RequestCancel() { e.cancelRequested.Store(true) }

// CancelRequested reports whether any subscriber vetoed the transition.
func (e *LifecycleEvent) CancelRequested() bool { return e.cancelRequested.Load() }

// DeferInstall declares that the host will decide later whether to install.
// Only meaningful on DownloadStandby events.
func (e *LifecycleEvent) DeferInstall() { e.shouldWait.Store(true) }

// ShouldWait reports whether a subscriber asked to defer installation.
func (e *LifecycleEvent) ShouldWait() bool {
	return e.state == LifecycleDownloadStandby && e.shouldWait.Load()
}

// DownloadState is the state carried by a progress event.
type DownloadState int

const (
	// DownloadStateDownloading means the transfer is running.
	DownloadStateDownloading DownloadState = iota
	// DownloadStateError means the transfer failed.
	DownloadStateError
	// DownloadStateCancelled means the transfer was cancelled.
	DownloadStateCancelled
)

// String returns a human-readable string for the download state.
func (s DownloadState) String() string {
	switch s {
	case DownloadStateDownloading:
		return "downloading"
	case DownloadStateError:
		return "error"
	case DownloadStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ProgressEvent describes one tick on the progress stream.
type ProgressEvent struct {
	// Percent is in [0, 100]. Only meaningful while downloading.
	Percent int
	// State is the transfer state.
	State DownloadState
	// Cause is set iff State is DownloadStateError.
	Cause error
}

// NewProgressEvent creates a downloading tick, clamping percent to [0, 100].
func NewProgressEvent(percent int) ProgressEvent {
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	return ProgressEvent{Percent: percent, State: DownloadStateDownloading}
}

// NewProgressError creates a terminal error event.
func NewProgressError(cause error) ProgressEvent {
	if cause == nil {
		cause = ErrUnknownTransferFailure
	}
	return ProgressEvent{State: DownloadStateError, Cause: cause}
}

// NewProgressCancelled creates a terminal cancellation event.
func NewProgressCancelled() ProgressEvent {
	return ProgressEvent{State: DownloadStateCancelled}
}

// PercentOf converts a byte count into a clamped percentage.
// An unknown total (<= 0) yields 0.
func PercentOf(received, total int64) int {
	if total <= 0 || received <= 0 {
		return 0
	}
	if received >= total {
		return 100
	}
	return int(received * 100 / total)
}

// UpdateOutcome is the persisted result of one lifecycle step.
type UpdateOutcome string

const (
	// UpdateOutcomeNotAvailable means the check found no update.
	UpdateOutcomeNotAvailable UpdateOutcome = "not_available"
	// UpdateOutcomeAvailable means an update was detected.
	UpdateOutcomeAvailable UpdateOutcome = "available"
	// UpdateOutcomeStandby means the artifact was downloaded.
	UpdateOutcomeStandby UpdateOutcome = "standby"
	// UpdateOutcomeInstalled means the installer was invoked.
	UpdateOutcomeInstalled UpdateOutcome = "installed"
	// UpdateOutcomeFailed means the transfer or install failed.
	UpdateOutcomeFailed UpdateOutcome = "failed"
	// UpdateOutcomeCancelled means the transfer was cancelled or install was vetoed.
	UpdateOutcomeCancelled UpdateOutcome = "cancelled"
)

// UpdateRecord is one row of update history.
type UpdateRecord struct {
	ID           int64
	Version      string
	Outcome      UpdateOutcome
	Detail       string
	ArtifactPath string
	RecordedAt   time.Time
}
