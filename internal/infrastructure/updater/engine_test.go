package updater

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/infrastructure/env"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(t.TempDir(), "downloads")
	}
	e := New(cfg)
	e.isFlatpak = func() bool { return false }
	e.detect = func(context.Context, string) env.InstallKind { return env.InstallStandalone }
	noSleep := func(context.Context, time.Duration) error { return nil }
	e.manifest.sleep = noSleep
	e.transfer.sleep = noSleep
	t.Cleanup(func() {
		e.Cancel()
		e.Wait()
	})
	return e
}

// transferRecorder collects download callbacks and signals the terminal one.
type transferRecorder struct {
	mu        sync.Mutex
	progress  [][2]int64
	finished  string
	err       error
	cancelled bool
	done      chan struct{}
}

func newTransferRecorder(e *Engine) *transferRecorder {
	r := &transferRecorder{done: make(chan struct{})}
	e.SetCallbacks(port.EngineCallbacks{
		OnDownloadProgress: func(received, total int64) {
			r.mu.Lock()
			r.progress = append(r.progress, [2]int64{received, total})
			r.mu.Unlock()
		},
		OnDownloadFinished: func(path string) {
			r.mu.Lock()
			r.finished = path
			r.mu.Unlock()
			close(r.done)
		},
		OnDownloadError: func(err error) {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			close(r.done)
		},
		OnDownloadCancelled: func() {
			r.mu.Lock()
			r.cancelled = true
			r.mu.Unlock()
			close(r.done)
		},
	})
	return r
}

func (r *transferRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("transfer did not finish")
	}
}

func serveManifest(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "upgate/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEngine_CheckForUpdatesQuietly(t *testing.T) {
	srv := serveManifest(t, `{"releases":[
		{"version":"1.2.0","url":"app-1.2.0.tar.gz"},
		{"version":"1.1.0","url":"app-1.1.0.tar.gz"},
		{"version":"1.0.0","url":"app-1.0.0.tar.gz"}
	]}`)

	dir := filepath.Join(t.TempDir(), "dl")
	e := newTestEngine(t, Config{
		ManifestURL:    srv.URL + "/manifest.json",
		CurrentVersion: "v1.0.0",
		DownloadDir:    dir,
	})

	var detected []entity.CheckResult
	e.SetCallbacks(port.EngineCallbacks{
		OnUpdateDetected: func(r entity.CheckResult) { detected = append(detected, r) },
	})

	result, err := e.CheckForUpdatesQuietly(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.HasUpdates)
	assert.Equal(t, "1.0.0", result.CurrentVersion)
	require.Len(t, result.Candidates, 2)
	best, ok := result.Best()
	require.True(t, ok)
	assert.Equal(t, "1.2.0", best.Version)
	assert.Equal(t, srv.URL+"/app-1.2.0.tar.gz", best.DownloadURL)

	require.Len(t, detected, 1)
	assert.Equal(t, *result, detected[0])

	assert.DirExists(t, dir)
}

func TestEngine_CheckForUpdatesQuietly_UpToDate(t *testing.T) {
	srv := serveManifest(t, `{"releases":[{"version":"1.0.0","url":"app.tar.gz"}]}`)
	e := newTestEngine(t, Config{ManifestURL: srv.URL, CurrentVersion: "1.0.0"})

	called := false
	e.SetCallbacks(port.EngineCallbacks{OnUpdateDetected: func(entity.CheckResult) { called = true }})

	result, err := e.CheckForUpdatesQuietly(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.HasUpdates)
	assert.False(t, called)
}

func TestEngine_CheckForUpdatesQuietly_NoInformation(t *testing.T) {
	tests := []struct {
		name    string
		version string
		flatpak bool
	}{
		{name: "dev build", version: "dev"},
		{name: "empty version", version: ""},
		{name: "flatpak", version: "1.0.0", flatpak: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, Config{ManifestURL: "https://updates.example.com/m.json", CurrentVersion: tt.version})
			e.isFlatpak = func() bool { return tt.flatpak }

			result, err := e.CheckForUpdatesQuietly(context.Background())
			assert.NoError(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestEngine_CheckForUpdatesQuietly_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{name: "service unavailable", status: http.StatusServiceUnavailable, transient: true},
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			t.Cleanup(srv.Close)

			e := newTestEngine(t, Config{ManifestURL: srv.URL, CurrentVersion: "1.0.0"})

			result, err := e.CheckForUpdatesQuietly(context.Background())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.transient, errors.Is(err, port.ErrUpdateCheckTransient))
			if tt.transient {
				assert.Equal(t, int32(maxRetryAttempts), hits.Load())
			} else {
				assert.Equal(t, int32(1), hits.Load())
			}
		})
	}
}

func TestEngine_CheckForUpdatesQuietly_InvalidVersion(t *testing.T) {
	e := newTestEngine(t, Config{ManifestURL: "https://updates.example.com/m.json", CurrentVersion: "banana"})

	_, err := e.CheckForUpdatesQuietly(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid current version")
}

func artifactServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEngine_InitiateDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("upgate"), 20000)
	sum := sha256.Sum256(payload)
	srv := artifactServer(t, payload)

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	rec := newTransferRecorder(e)

	err := e.InitiateDownload(context.Background(), entity.Candidate{
		Version:     "2.0.0",
		DownloadURL: srv.URL + "/app-2.0.0.tar.gz",
		SHA256:      hex.EncodeToString(sum[:]),
	})
	require.NoError(t, err)
	rec.wait(t)

	require.NoError(t, rec.err)
	require.NotEmpty(t, rec.finished)
	assert.Equal(t, e.cfg.DownloadDir, filepath.Dir(rec.finished))
	assert.Regexp(t, `^upgate-.*\.part$`, filepath.Base(rec.finished))

	got, err := os.ReadFile(rec.finished)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NotEmpty(t, rec.progress)
	last := rec.progress[len(rec.progress)-1]
	assert.Equal(t, int64(len(payload)), last[0])
	assert.Equal(t, int64(len(payload)), last[1])
}

func TestEngine_InitiateDownload_ChecksumMismatch(t *testing.T) {
	srv := artifactServer(t, []byte("not what you expected"))

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	rec := newTransferRecorder(e)

	require.NoError(t, e.InitiateDownload(context.Background(), entity.Candidate{
		Version:     "2.0.0",
		DownloadURL: srv.URL + "/app.tar.gz",
		SHA256:      "deadbeef",
	}))
	rec.wait(t)

	require.Error(t, rec.err)
	assert.ErrorIs(t, rec.err, errChecksumMismatch)
	assert.Empty(t, rec.finished)

	entries, err := os.ReadDir(e.cfg.DownloadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file should be removed")
}

func TestEngine_InitiateDownload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	rec := newTransferRecorder(e)

	require.NoError(t, e.InitiateDownload(context.Background(), entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL}))
	rec.wait(t)

	require.Error(t, rec.err)
	assert.Contains(t, rec.err.Error(), "status 403")
}

// blockingServer sends a partial body and then stalls until the request is cancelled.
func blockingServer(t *testing.T) (*httptest.Server, <-chan struct{}) {
	t.Helper()
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		_, _ = w.Write(make([]byte, 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv, started
}

func TestEngine_InitiateDownload_Cancel(t *testing.T) {
	srv, started := blockingServer(t)

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	rec := newTransferRecorder(e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.InitiateDownload(ctx, entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL + "/app.tar.gz"}))

	<-started
	err := e.InitiateDownload(ctx, entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL + "/app.tar.gz"})
	assert.ErrorIs(t, err, ErrDownloadInProgress)

	cancel()
	rec.wait(t)

	assert.True(t, rec.cancelled)
	assert.NoError(t, rec.err)
	assert.Empty(t, rec.finished)
}

func TestEngine_Cancel(t *testing.T) {
	srv, started := blockingServer(t)

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	rec := newTransferRecorder(e)

	require.NoError(t, e.InitiateDownload(context.Background(), entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL}))
	<-started
	e.Cancel()
	rec.wait(t)
	e.Wait()

	assert.True(t, rec.cancelled)

	// A new transfer may start once the previous one has returned.
	rec2 := newTransferRecorder(e)
	require.NoError(t, e.InitiateDownload(context.Background(), entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL}))
	e.Cancel()
	rec2.wait(t)
}

func TestEngine_InitiateDownload_RejectsInsecureURL(t *testing.T) {
	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})

	err := e.InitiateDownload(context.Background(), entity.Candidate{
		Version:     "2.0.0",
		DownloadURL: "http://updates.example.com/app.tar.gz",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must use HTTPS")
}

func TestEngine_SetCallbacks_ZeroDetaches(t *testing.T) {
	payload := make([]byte, 2048)
	srv := artifactServer(t, payload)

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	newTransferRecorder(e)
	e.SetCallbacks(port.EngineCallbacks{})

	require.NoError(t, e.InitiateDownload(context.Background(), entity.Candidate{Version: "2.0.0", DownloadURL: srv.URL}))
	e.Wait()
}
