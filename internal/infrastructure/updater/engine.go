// Package updater is the reference UpdateEngine: it reads a JSON release
// manifest over HTTPS, downloads the selected artifact and swaps the target
// binary in place.
package updater

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/infrastructure/env"
)

const (
	// Maximum size of the release manifest.
	maxManifestSize = 1 * 1024 * 1024

	// Maximum size of a downloaded artifact (150MB).
	maxArtifactSize = 150 * 1024 * 1024

	// Maximum size of a binary extracted from an archive (100MB).
	maxBinarySize = 100 * 1024 * 1024

	// Minimum expected binary size, smaller files are treated as corrupt.
	minBinarySize = 1024

	defaultRequestTimeout  = 15 * time.Second
	defaultDownloadTimeout = 10 * time.Minute

	// Permission for created directories and installed binaries.
	execPerm = 0o755
)

// ErrDownloadInProgress is returned when a transfer is requested while another one runs.
var ErrDownloadInProgress = errors.New("download already in progress")

// ErrManagedInstall is returned when the target binary belongs to a package manager.
var ErrManagedInstall = errors.New("target is managed by a package manager")

// Config configures the reference engine.
type Config struct {
	ManifestURL     string
	CurrentVersion  string
	TargetPath      string
	DownloadDir     string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	UserAgent       string
}

// Engine implements port.UpdateEngine.
type Engine struct {
	cfg      Config
	log      zerolog.Logger
	manifest *retrier
	transfer *retrier

	detect     func(ctx context.Context, target string) env.InstallKind
	isFlatpak  func() bool
	executable func() (string, error)

	cbMu      sync.RWMutex
	callbacks port.EngineCallbacks

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log.With().Str("component", "updater").Logger()
	}
}

// WithHTTPClient replaces the client used for both manifest and artifact requests.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		e.manifest.client = client
		e.transfer.client = client
	}
}

// New creates an engine. Zero timeouts fall back to sensible defaults.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = defaultDownloadTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "upgate/" + strings.TrimPrefix(cfg.CurrentVersion, "v")
	}

	e := &Engine{
		cfg: cfg,
		log: zerolog.Nop(),
		manifest: &retrier{
			client:    &http.Client{Timeout: cfg.RequestTimeout},
			randInt63: rand.Int64N,
			sleep:     waitForBackoff,
		},
		// Transfers are bounded by DownloadTimeout through the context instead.
		transfer: &retrier{
			client:    &http.Client{},
			randInt63: rand.Int64N,
			sleep:     waitForBackoff,
		},
		detect:     env.Detect,
		isFlatpak:  env.IsFlatpak,
		executable: os.Executable,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetCallbacks replaces the registered callbacks.
func (e *Engine) SetCallbacks(callbacks port.EngineCallbacks) {
	e.cbMu.Lock()
	e.callbacks = callbacks
	e.cbMu.Unlock()
}

func (e *Engine) cb() port.EngineCallbacks {
	e.cbMu.RLock()
	defer e.cbMu.RUnlock()
	return e.callbacks
}

// CheckForUpdatesQuietly fetches the manifest and reports newer releases.
// Development builds and Flatpak installs yield no information.
func (e *Engine) CheckForUpdatesQuietly(ctx context.Context) (*entity.CheckResult, error) {
	current := strings.TrimSpace(e.cfg.CurrentVersion)
	if current == "" || current == "dev" {
		e.log.Debug().Msg("development build, skipping update check")
		return nil, nil
	}
	if e.isFlatpak() {
		e.log.Debug().Msg("running inside flatpak, updates are handled by flatpak")
		return nil, nil
	}

	currentVer, err := version.NewVersion(current)
	if err != nil {
		return nil, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	base, err := url.Parse(e.cfg.ManifestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}

	var manifest *Manifest
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, fetchErr := e.fetchManifest(gctx)
		manifest = m
		return fetchErr
	})
	g.Go(func() error {
		if e.cfg.DownloadDir == "" {
			return nil
		}
		if mkErr := os.MkdirAll(e.cfg.DownloadDir, execPerm); mkErr != nil {
			return fmt.Errorf("failed to create download directory: %w", mkErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := selectCandidates(manifest, currentVer, base)
	result := &entity.CheckResult{
		HasUpdates:     len(candidates) > 0,
		CurrentVersion: currentVer.String(),
		Candidates:     candidates,
	}

	if !result.HasUpdates {
		e.log.Debug().Str("current", result.CurrentVersion).Msg("no update available")
		return result, nil
	}

	best, _ := result.Best()
	e.log.Info().
		Str("current", result.CurrentVersion).
		Str("latest", best.Version).
		Int("candidates", len(candidates)).
		Msg("update available")

	if fn := e.cb().OnUpdateDetected; fn != nil {
		fn(*result)
	}
	return result, nil
}

func (e *Engine) fetchManifest(ctx context.Context) (*Manifest, error) {
	if err := validateDownloadURL(e.cfg.ManifestURL); err != nil {
		return nil, fmt.Errorf("invalid manifest URL: %w", err)
	}

	resp, err := e.manifest.get(ctx, e.cfg.ManifestURL, e.cfg.UserAgent)
	if err != nil {
		if isRetryableRequestError(err) {
			return nil, fmt.Errorf("%w: %w", port.ErrUpdateCheckTransient, err)
		}
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: manifest returned status %d", port.ErrUpdateCheckTransient, resp.StatusCode)
		}
		return nil, fmt.Errorf("manifest returned status %d", resp.StatusCode)
	}
	return decodeManifest(resp.Body)
}

// InitiateDownload starts the transfer in the background. The transfer is
// bound to ctx; cancelling it reports OnDownloadCancelled.
func (e *Engine) InitiateDownload(ctx context.Context, candidate entity.Candidate) error {
	if err := validateDownloadURL(candidate.DownloadURL); err != nil {
		return fmt.Errorf("invalid download URL: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return ErrDownloadInProgress
	}

	transferCtx, cancel := context.WithTimeout(ctx, e.cfg.DownloadTimeout)
	e.cancel = cancel
	e.wg.Go(func() {
		defer e.finishTransfer(cancel)
		e.runTransfer(transferCtx, candidate)
	})
	return nil
}

func (e *Engine) finishTransfer(cancel context.CancelFunc) {
	cancel()
	e.mu.Lock()
	e.cancel = nil
	e.mu.Unlock()
}

// Cancel aborts the running transfer, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until background transfers have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) runTransfer(ctx context.Context, candidate entity.Candidate) {
	path, err := e.download(ctx, candidate)
	cb := e.cb()
	switch {
	case err == nil:
		if cb.OnDownloadFinished != nil {
			cb.OnDownloadFinished(path)
		}
	case errors.Is(err, context.Canceled):
		e.log.Info().Str("version", candidate.Version).Msg("download cancelled")
		if cb.OnDownloadCancelled != nil {
			cb.OnDownloadCancelled()
		}
	default:
		e.log.Warn().Err(err).Str("version", candidate.Version).Msg("download failed")
		if cb.OnDownloadError != nil {
			cb.OnDownloadError(err)
		}
	}
}

var _ port.UpdateEngine = (*Engine)(nil)
