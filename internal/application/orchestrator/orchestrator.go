// Package orchestrator drives the check, download, standby and install cycle
// of an UpdateEngine and republishes it as ordered lifecycle and progress events.
package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/bnema/upgate/internal/application/eventbus"
	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/artifact"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/domain/gate"
)

// pendingUpdate is the candidate being processed by the current cycle.
type pendingUpdate struct {
	candidate entity.Candidate
	localPath string
	finalPath string
}

func (p pendingUpdate) empty() bool {
	return p.candidate.IsZero() && p.localPath == ""
}

// Orchestrator owns the update state machine.
//
// Engine callbacks may arrive on any goroutine. State is guarded by mu, which
// is never held while publishing or while calling into the engine. progressMu
// is taken before mu by every path that publishes on the progress stream, so
// ticks leave in percent order and never after a terminal progress event.
type Orchestrator struct {
	engine    port.UpdateEngine
	bus       *eventbus.Bus
	fs        port.FileSystem
	log       zerolog.Logger
	onClose   func()
	onOutcome func(entity.UpdateRecord)

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	progressMu sync.Mutex

	mu          sync.Mutex
	state       State
	cycle       uint64
	pending     pendingUpdate
	gate        *gate.Gate
	lastPercent int
	disposed    bool
}

// New creates an orchestrator and registers it as the engine's callback target.
func New(engine port.UpdateEngine, opts ...Option) (*Orchestrator, error) {
	if engine == nil {
		return nil, ErrNotInitialized
	}

	o := &Orchestrator{
		engine:      engine,
		log:         zerolog.Nop(),
		lastPercent: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.bus == nil {
		o.bus = eventbus.New(o.log)
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())

	engine.SetCallbacks(port.EngineCallbacks{
		OnUpdateDetected:    o.onUpdateDetected,
		OnDownloadProgress:  o.onDownloadProgress,
		OnDownloadError:     o.onDownloadError,
		OnDownloadCancelled: o.onDownloadCancelled,
		OnDownloadFinished:  o.onDownloadFinished,
		OnCloseRequested:    o.onCloseRequested,
	})

	return o, nil
}

// SubscribeLifecycle registers a lifecycle handler.
// Handlers run synchronously on the publishing goroutine and may call
// RequestCancel or DeferInstall on the event before returning.
func (o *Orchestrator) SubscribeLifecycle(fn func(*entity.LifecycleEvent)) (eventbus.Subscription, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	return o.bus.Lifecycle.Subscribe(fn), nil
}

// SubscribeProgress registers a progress handler.
func (o *Orchestrator) SubscribeProgress(fn func(entity.ProgressEvent)) (eventbus.Subscription, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	return o.bus.Progress.Subscribe(fn), nil
}

// CheckNow runs a quiet check and handles its result before returning.
// The download, if any, continues in the background.
// It is a no-op while a previous cycle is still in flight.
func (o *Orchestrator) CheckNow(ctx context.Context) error {
	if o == nil || o.engine == nil {
		return ErrNotInitialized
	}

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return ErrDisposed
	}
	if o.state.InFlight() {
		state := o.state
		o.mu.Unlock()
		o.log.Debug().Str("state", state.String()).Msg("check skipped, cycle in flight")
		return nil
	}
	o.cycle++
	cycle := o.cycle
	o.state = StateChecking
	o.pending = pendingUpdate{}
	o.gate = nil
	o.lastPercent = -1
	o.mu.Unlock()

	checkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(o.ctx, cancel)
	defer stop()

	o.log.Debug().Uint64("cycle", cycle).Msg("checking for updates")
	result, err := o.engine.CheckForUpdatesQuietly(checkCtx)
	switch {
	case err != nil:
		o.log.Warn().Err(err).Msg("update check failed")
		o.finishWithoutUpdate(cycle, err.Error())
	case result == nil || !result.HasUpdates:
		o.finishWithoutUpdate(cycle, "")
	default:
		o.handleDetected(cycle, *result)
	}
	return nil
}

// TriggerUpdate resolves a deferred install decision.
// It does nothing when no decision is outstanding.
func (o *Orchestrator) TriggerUpdate(proceed bool) error {
	if err := o.usable(); err != nil {
		return err
	}

	o.mu.Lock()
	g := o.gate
	o.mu.Unlock()

	if g == nil {
		o.log.Debug().Bool("proceed", proceed).Msg("no install decision pending")
		return nil
	}
	if !g.Resolve(proceed) {
		o.log.Debug().Msg("install decision already made")
	}
	return nil
}

// AwaitingDecision reports whether a deferred install decision is outstanding.
func (o *Orchestrator) AwaitingDecision() bool {
	if o == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gate == nil {
		return false
	}
	_, resolved := o.gate.Outcome()
	return !resolved
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	if o == nil {
		return StateIdle
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// PendingVersion returns the version of the pending update, or "".
func (o *Orchestrator) PendingVersion() string {
	if o == nil {
		return ""
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending.candidate.Version
}

// HasPendingUpdate reports whether a candidate is being processed.
func (o *Orchestrator) HasPendingUpdate() bool {
	if o == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.pending.empty()
}

// Dispose detaches from the engine, aborts any outstanding decision, waits
// for the install continuation and closes the bus. It is idempotent.
// It must not be called from inside a subscriber.
func (o *Orchestrator) Dispose() {
	if o == nil || o.engine == nil {
		return
	}

	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	g := o.gate
	o.mu.Unlock()

	o.engine.SetCallbacks(port.EngineCallbacks{})
	o.cancel()
	if g != nil {
		g.Resolve(false)
	}
	if recovered := o.wg.WaitAndRecover(); recovered != nil {
		o.log.Error().Str("panic", recovered.String()).Msg("install continuation panicked")
	}

	o.mu.Lock()
	var leftover string
	if o.state == StateStandby {
		leftover = o.pending.localPath
	}
	o.pending = pendingUpdate{}
	o.gate = nil
	if o.state.InFlight() {
		o.state = StateCancelled
	}
	o.mu.Unlock()

	o.discard(leftover)
	o.bus.Close()
	o.log.Debug().Msg("orchestrator disposed")
}

func (o *Orchestrator) usable() error {
	if o == nil || o.engine == nil {
		return ErrNotInitialized
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return ErrDisposed
	}
	return nil
}

// live reports whether a handler for cycle may still act from state want.
// Callers hold mu.
func (o *Orchestrator) live(cycle uint64, want State) bool {
	return !o.disposed && o.cycle == cycle && o.state == want
}

func (o *Orchestrator) currentCycle() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cycle
}

func (o *Orchestrator) finishWithoutUpdate(cycle uint64, detail string) {
	o.mu.Lock()
	if !o.live(cycle, StateChecking) {
		o.mu.Unlock()
		return
	}
	o.state = StateIdle
	o.pending = pendingUpdate{}
	o.mu.Unlock()

	o.bus.PublishLifecycle(entity.NewLifecycleEvent(entity.LifecycleNotAvailable, ""))
	o.report(entity.UpdateRecord{Outcome: entity.UpdateOutcomeNotAvailable, Detail: detail})
}

func (o *Orchestrator) onUpdateDetected(result entity.CheckResult) {
	o.handleDetected(o.currentCycle(), result)
}

func (o *Orchestrator) handleDetected(cycle uint64, result entity.CheckResult) {
	o.mu.Lock()
	if !o.live(cycle, StateChecking) {
		o.mu.Unlock()
		return
	}
	o.state = StateAwaitingDetection
	o.mu.Unlock()

	best, ok := result.Best()
	ev := entity.NewLifecycleEvent(entity.LifecycleUpdateAvailable, best.Version)
	o.bus.PublishLifecycle(ev)

	o.mu.Lock()
	if !o.live(cycle, StateAwaitingDetection) {
		o.mu.Unlock()
		return
	}
	if ev.CancelRequested() || !ok {
		o.state = StateIdle
		o.pending = pendingUpdate{}
		o.mu.Unlock()

		detail := "vetoed by subscriber"
		if !ok {
			detail = "no candidates"
		}
		o.log.Info().Str("version", best.Version).Str("reason", detail).Msg("update not downloaded")
		o.report(entity.UpdateRecord{Version: best.Version, Outcome: entity.UpdateOutcomeCancelled, Detail: detail})
		return
	}
	o.pending = pendingUpdate{candidate: best}
	o.state = StateDownloading
	o.lastPercent = -1
	o.mu.Unlock()

	o.log.Info().Str("version", best.Version).Msg("update available, starting download")
	o.report(entity.UpdateRecord{Version: best.Version, Outcome: entity.UpdateOutcomeAvailable})

	if err := o.engine.InitiateDownload(o.ctx, best); err != nil {
		o.downloadFailed(cycle, err)
	}
}

func (o *Orchestrator) onDownloadProgress(received, total int64) {
	percent := entity.PercentOf(received, total)

	o.progressMu.Lock()
	defer o.progressMu.Unlock()

	o.mu.Lock()
	if o.disposed || o.state != StateDownloading || percent <= o.lastPercent {
		o.mu.Unlock()
		return
	}
	o.lastPercent = percent
	o.mu.Unlock()

	o.bus.PublishProgress(entity.NewProgressEvent(percent))
}

func (o *Orchestrator) onDownloadError(err error) {
	o.downloadFailed(o.currentCycle(), err)
}

func (o *Orchestrator) downloadFailed(cycle uint64, err error) {
	o.progressMu.Lock()
	o.mu.Lock()
	if !o.live(cycle, StateDownloading) {
		o.mu.Unlock()
		o.progressMu.Unlock()
		return
	}
	version := o.pending.candidate.Version
	o.state = StateFailed
	o.pending = pendingUpdate{}
	o.mu.Unlock()

	ev := entity.NewProgressError(err)
	o.log.Warn().Err(ev.Cause).Str("version", version).Msg("update download failed")
	o.bus.PublishProgress(ev)
	o.progressMu.Unlock()

	o.report(entity.UpdateRecord{Version: version, Outcome: entity.UpdateOutcomeFailed, Detail: ev.Cause.Error()})
}

func (o *Orchestrator) onDownloadCancelled() {
	o.progressMu.Lock()
	o.mu.Lock()
	if o.disposed || o.state != StateDownloading {
		o.mu.Unlock()
		o.progressMu.Unlock()
		return
	}
	version := o.pending.candidate.Version
	o.state = StateCancelled
	o.pending = pendingUpdate{}
	o.mu.Unlock()

	o.log.Info().Str("version", version).Msg("update download cancelled")
	o.bus.PublishProgress(entity.NewProgressCancelled())
	o.progressMu.Unlock()

	o.report(entity.UpdateRecord{Version: version, Outcome: entity.UpdateOutcomeCancelled, Detail: "download cancelled"})
}

func (o *Orchestrator) onDownloadFinished(tempPath string) {
	o.mu.Lock()
	if o.disposed || o.state != StateDownloading {
		o.mu.Unlock()
		return
	}
	cycle := o.cycle
	if tempPath == "" {
		o.mu.Unlock()
		o.downloadFailed(cycle, errMissingArtifact)
		return
	}
	candidate := o.pending.candidate
	finalPath := tempPath
	if o.fs != nil {
		if resolved := artifact.ResolvePath(tempPath, candidate.DownloadURL); resolved != "" {
			finalPath = resolved
		}
	}
	o.pending.localPath = tempPath
	o.pending.finalPath = finalPath
	o.state = StateStandby
	o.mu.Unlock()

	o.log.Debug().
		Str("version", candidate.Version).
		Str("temp_path", tempPath).
		Str("artifact", finalPath).
		Msg("update downloaded")
	o.report(entity.UpdateRecord{
		Version:      candidate.Version,
		Outcome:      entity.UpdateOutcomeStandby,
		ArtifactPath: finalPath,
	})

	ev := entity.NewStandbyEvent(candidate.Version, finalPath)
	o.bus.PublishLifecycle(ev)

	o.mu.Lock()
	if !o.live(cycle, StateStandby) {
		o.mu.Unlock()
		return
	}
	if ev.CancelRequested() {
		o.state = StateCancelled
		o.pending = pendingUpdate{}
		o.mu.Unlock()

		o.log.Info().Str("version", candidate.Version).Msg("install vetoed by subscriber")
		o.discard(tempPath)
		o.report(entity.UpdateRecord{Version: candidate.Version, Outcome: entity.UpdateOutcomeCancelled, Detail: "install vetoed"})
		return
	}
	if ev.ShouldWait() {
		g := gate.New()
		o.gate = g
		o.wg.Go(func() { o.awaitDecision(cycle, g) })
		o.mu.Unlock()

		o.log.Info().Str("version", candidate.Version).Msg("install deferred, waiting for decision")
		return
	}
	o.state = StateInstalling
	o.mu.Unlock()

	o.install(cycle)
}

func (o *Orchestrator) awaitDecision(cycle uint64, g *gate.Gate) {
	outcome := g.Wait(o.ctx)

	o.mu.Lock()
	if o.gate == g {
		o.gate = nil
	}
	if !o.live(cycle, StateStandby) {
		o.mu.Unlock()
		return
	}
	if outcome == gate.Abort {
		p := o.pending
		o.state = StateCancelled
		o.pending = pendingUpdate{}
		o.mu.Unlock()

		version := p.candidate.Version
		o.log.Info().Str("version", version).Msg("install aborted")
		o.discard(p.localPath)
		o.report(entity.UpdateRecord{Version: version, Outcome: entity.UpdateOutcomeCancelled, Detail: "install aborted"})
		return
	}
	o.state = StateInstalling
	o.mu.Unlock()

	o.install(cycle)
}

func (o *Orchestrator) install(cycle uint64) {
	o.mu.Lock()
	if !o.live(cycle, StateInstalling) {
		o.mu.Unlock()
		return
	}
	p := o.pending
	o.mu.Unlock()

	if p.finalPath != p.localPath {
		if err := o.relocate(p.localPath, p.finalPath); err != nil {
			o.installFailed(cycle, p, p.localPath, err)
			return
		}
	}

	o.log.Info().Str("version", p.candidate.Version).Str("artifact", p.finalPath).Msg("installing update")
	if err := o.engine.InstallUpdate(o.ctx, p.candidate, p.finalPath); err != nil {
		o.installFailed(cycle, p, p.finalPath, err)
		return
	}

	o.mu.Lock()
	if o.cycle == cycle && o.state == StateInstalling {
		o.state = StateIdle
		o.pending = pendingUpdate{}
	}
	o.mu.Unlock()

	o.report(entity.UpdateRecord{
		Version:      p.candidate.Version,
		Outcome:      entity.UpdateOutcomeInstalled,
		ArtifactPath: p.finalPath,
	})
}

// relocate moves the engine's temporary file to its resolved name, replacing
// any stale copy left by a previous cycle.
func (o *Orchestrator) relocate(from, to string) error {
	if err := o.fs.Remove(o.ctx, to); err != nil {
		return err
	}
	return o.fs.Rename(o.ctx, from, to)
}

// installFailed settles a failed install. leftover is where the artifact
// currently sits on disk.
func (o *Orchestrator) installFailed(cycle uint64, p pendingUpdate, leftover string, err error) {
	o.progressMu.Lock()
	o.mu.Lock()
	if o.cycle != cycle || o.state != StateInstalling {
		o.mu.Unlock()
		o.progressMu.Unlock()
		return
	}
	o.state = StateFailed
	o.pending = pendingUpdate{}
	disposed := o.disposed
	o.mu.Unlock()

	o.log.Error().Err(err).Str("version", p.candidate.Version).Msg("update install failed")
	o.discard(leftover)
	if disposed {
		o.progressMu.Unlock()
		return
	}
	o.bus.PublishProgress(entity.NewProgressError(err))
	o.progressMu.Unlock()

	o.report(entity.UpdateRecord{
		Version:      p.candidate.Version,
		Outcome:      entity.UpdateOutcomeFailed,
		Detail:       err.Error(),
		ArtifactPath: p.finalPath,
	})
}

// discard removes a downloaded artifact that will not be installed, so the
// next cycle does not leave another copy behind.
func (o *Orchestrator) discard(path string) {
	if o.fs == nil || path == "" {
		return
	}
	if err := o.fs.Remove(context.WithoutCancel(o.ctx), path); err != nil {
		o.log.Warn().Err(err).Str("path", path).Msg("failed to remove unused artifact")
		return
	}
	o.log.Debug().Str("path", path).Msg("removed unused artifact")
}

func (o *Orchestrator) onCloseRequested() {
	o.mu.Lock()
	disposed := o.disposed
	o.mu.Unlock()
	if disposed || o.onClose == nil {
		return
	}
	o.log.Debug().Msg("engine requested application close")
	o.onClose()
}

func (o *Orchestrator) report(rec entity.UpdateRecord) {
	if o.onOutcome == nil {
		return
	}
	o.mu.Lock()
	disposed := o.disposed
	o.mu.Unlock()
	if disposed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Interface("panic", r).Msg("outcome handler panicked")
		}
	}()
	o.onOutcome(rec)
}
