package orchestrator

// State is the orchestrator's internal position in the update cycle.
type State int

const (
	// StateIdle means no cycle is running. A finished check also returns here.
	StateIdle State = iota
	// StateChecking means the engine quiet-check is running.
	StateChecking
	// StateAwaitingDetection means UpdateAvailable is being delivered and the veto is pending.
	StateAwaitingDetection
	// StateDownloading means the engine is transferring the artifact.
	StateDownloading
	// StateStandby means the artifact is on disk and the install decision is pending.
	StateStandby
	// StateInstalling means the artifact is being relocated and handed to the installer.
	StateInstalling
	// StateCancelled means the transfer was cancelled or the install was vetoed or aborted.
	StateCancelled
	// StateFailed means the transfer, relocation or install failed.
	StateFailed
)

// String returns a human-readable string for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateAwaitingDetection:
		return "awaiting-detection"
	case StateDownloading:
		return "downloading"
	case StateStandby:
		return "standby"
	case StateInstalling:
		return "installing"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a cycle is running and a new check must not start.
func (s State) InFlight() bool {
	switch s {
	case StateChecking, StateAwaitingDetection, StateDownloading, StateStandby, StateInstalling:
		return true
	default:
		return false
	}
}
