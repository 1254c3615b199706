package orchestrator

import "errors"

var (
	// ErrNotInitialized is returned when the orchestrator has no engine.
	ErrNotInitialized = errors.New("update orchestrator not initialized")
	// ErrDisposed is returned when the orchestrator is used after Dispose.
	ErrDisposed = errors.New("update orchestrator disposed")

	errMissingArtifact = errors.New("engine reported an empty artifact path")
)
