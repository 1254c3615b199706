package updater

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bnema/upgate/internal/domain/entity"
)

const backupSuffix = ".old"

var gzipMagic = []byte{0x1f, 0x8b}

// InstallUpdate asks the host to close, then replaces the target binary with
// the one carried by localPath. localPath is either the raw binary or a
// gzipped tarball containing an entry named after the target.
func (e *Engine) InstallUpdate(ctx context.Context, candidate entity.Candidate, localPath string) error {
	if fn := e.cb().OnCloseRequested; fn != nil {
		fn()
	}

	target, err := e.targetPath()
	if err != nil {
		return err
	}
	if kind := e.detect(ctx, target); kind.Managed() {
		return fmt.Errorf("%w (%s): %s", ErrManagedInstall, kind, target)
	}

	targetDir := filepath.Dir(target)
	if err := unix.Access(targetDir, unix.W_OK); err != nil {
		return fmt.Errorf("target directory %s is not writable: %w", targetDir, err)
	}

	e.log.Info().
		Str("version", candidate.Version).
		Str("artifact", localPath).
		Str("target", target).
		Msg("installing update")

	staged := filepath.Join(targetDir, "."+filepath.Base(target)+".new")
	if err := stageBinary(localPath, staged, filepath.Base(target)); err != nil {
		_ = os.Remove(staged)
		return err
	}

	backup, err := swapBinary(staged, target)
	if err != nil {
		_ = os.Remove(staged)
		return err
	}

	_ = os.Remove(localPath)
	e.log.Info().
		Str("target", target).
		Str("backup", backup).
		Msg("update installed")
	return nil
}

// targetPath returns the configured target or the resolved running executable.
func (e *Engine) targetPath() (string, error) {
	if e.cfg.TargetPath != "" {
		return e.cfg.TargetPath, nil
	}
	path, err := e.executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	return resolved, nil
}

// stageBinary writes the new binary to staged with exec permissions.
func stageBinary(localPath, staged, binaryName string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() { _ = src.Close() }()

	br := bufio.NewReader(src)
	head, _ := br.Peek(len(gzipMagic))

	out, err := os.OpenFile(staged, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, execPerm)
	if err != nil {
		return fmt.Errorf("failed to create staged binary: %w", err)
	}

	var written int64
	if bytes.Equal(head, gzipMagic) {
		written, err = extractBinary(br, out, binaryName)
	} else {
		// Limit copy to prevent unbounded writes from a bogus artifact.
		written, err = io.CopyN(out, br, maxBinarySize)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if written < minBinarySize {
		return fmt.Errorf("binary too small (%d bytes), expected at least %d bytes", written, minBinarySize)
	}
	// OpenFile honours umask, force the exec bits.
	if err := os.Chmod(staged, execPerm); err != nil {
		return fmt.Errorf("failed to chmod staged binary: %w", err)
	}
	return nil
}

// extractBinary copies the first regular tar entry whose base name is binaryName.
func extractBinary(r io.Reader, out io.Writer, binaryName string) (int64, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return 0, fmt.Errorf("%s not found in archive", binaryName)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != binaryName {
			continue
		}
		if _, err := sanitizeTarPath(header.Name, "."); err != nil {
			return 0, fmt.Errorf("invalid tar entry: %w", err)
		}

		// Limit copy to prevent decompression bombs.
		written, err := io.CopyN(out, tr, maxBinarySize)
		if err != nil && !errors.Is(err, io.EOF) {
			return written, fmt.Errorf("failed to extract binary: %w", err)
		}
		return written, nil
	}
}

// swapBinary moves target aside and staged into place, restoring the backup
// when the second rename fails.
func swapBinary(staged, target string) (string, error) {
	backup := target + backupSuffix
	_ = os.Remove(backup)

	hadTarget := true
	if err := os.Rename(target, backup); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to backup current binary: %w", err)
		}
		hadTarget = false
		backup = ""
	}

	if err := os.Rename(staged, target); err != nil {
		if hadTarget {
			_ = os.Rename(backup, target)
		}
		return "", fmt.Errorf("failed to install new binary: %w", err)
	}
	return backup, nil
}

// sanitizeTarPath validates a tar header name to prevent path traversal.
func sanitizeTarPath(name, destDir string) (string, error) {
	cleaned := filepath.Clean(name)

	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute path not allowed: %s", name)
	}
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("path traversal detected: %s", name)
		}
	}

	fullPath := filepath.Join(destDir, cleaned)
	absDestDir, err := filepath.Abs(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute dest path: %w", err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute full path: %w", err)
	}
	if !strings.HasPrefix(absFullPath, absDestDir+string(filepath.Separator)) && absFullPath != absDestDir {
		return "", fmt.Errorf("path escapes destination directory: %s", name)
	}
	return fullPath, nil
}
