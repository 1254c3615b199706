package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/bnema/upgate/internal/domain/entity"
)

// progressWriter reports cumulative byte counts for every chunk written.
type progressWriter struct {
	received int64
	total    int64
	report   func(received, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.received += int64(len(b))
	if p.report != nil {
		p.report(p.received, p.total)
	}
	return len(b), nil
}

// download writes the artifact to a fresh temp file and returns its path.
// The temp file is removed on any failure.
func (e *Engine) download(ctx context.Context, candidate entity.Candidate) (string, error) {
	resp, err := e.transfer.get(ctx, candidate.DownloadURL, e.cfg.UserAgent)
	if err != nil {
		return "", fmt.Errorf("failed to download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxArtifactSize {
		return "", fmt.Errorf("artifact too large: %d bytes (max %d)", resp.ContentLength, maxArtifactSize)
	}

	dir := e.cfg.DownloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, execPerm); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	file, err := os.CreateTemp(dir, "upgate-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := file.Name()

	e.log.Debug().
		Str("url", candidate.DownloadURL).
		Str("path", tempPath).
		Int64("size", resp.ContentLength).
		Msg("downloading update")

	hasher := sha256.New()
	progress := &progressWriter{total: resp.ContentLength, report: e.cb().OnDownloadProgress}

	// LimitReader bounds the transfer even when Content-Length is missing or wrong.
	limited := io.LimitReader(resp.Body, maxArtifactSize+1)
	written, err := io.Copy(io.MultiWriter(file, hasher, progress), limited)
	if closeErr := file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if written > maxArtifactSize {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("artifact exceeds maximum size of %d bytes", maxArtifactSize)
	}

	if err := verifyDigest(hasher.Sum(nil), candidate.SHA256); err != nil {
		_ = os.Remove(tempPath)
		return "", err
	}

	e.log.Debug().Int64("bytes", written).Str("path", tempPath).Msg("download completed")
	return tempPath, nil
}

// verifyDigest compares sum with the expected hex digest. An empty expectation passes.
func verifyDigest(sum []byte, expected string) error {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if expected == "" {
		return nil
	}
	actual := hex.EncodeToString(sum)
	if actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", errChecksumMismatch, expected, actual)
	}
	return nil
}

var errChecksumMismatch = errors.New("checksum mismatch")
