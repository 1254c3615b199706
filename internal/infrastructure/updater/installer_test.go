package updater

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/upgate/internal/application/port"
	"github.com/bnema/upgate/internal/domain/entity"
	"github.com/bnema/upgate/internal/infrastructure/env"
)

func fakeBinary(tag string) []byte {
	return append([]byte("#!/bin/sh\n# "+tag+"\n"), bytes.Repeat([]byte{0}, minBinarySize)...)
}

func writeTarGz(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	for name, body := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func installFixture(t *testing.T) (e *Engine, target string, closes *int) {
	t.Helper()
	dir := t.TempDir()
	target = filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(target, fakeBinary("old"), 0o755))

	e = newTestEngine(t, Config{CurrentVersion: "1.0.0", TargetPath: target})
	closes = new(int)
	e.SetCallbacks(port.EngineCallbacks{OnCloseRequested: func() { *closes++ }})
	return e, target, closes
}

func TestEngine_InstallUpdate_RawBinary(t *testing.T) {
	e, target, closes := installFixture(t)

	artifact := filepath.Join(t.TempDir(), "upgate-123.part")
	require.NoError(t, os.WriteFile(artifact, fakeBinary("new"), 0o600))

	err := e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact)
	require.NoError(t, err)

	assert.Equal(t, 1, *closes)
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("new"), got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(execPerm), info.Mode().Perm())

	backup, err := os.ReadFile(target + backupSuffix)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("old"), backup)

	assert.NoFileExists(t, artifact)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(target), ".app.new"))
}

func TestEngine_InstallUpdate_Archive(t *testing.T) {
	e, target, _ := installFixture(t)

	artifact := filepath.Join(t.TempDir(), "app-2.0.0.tar.gz")
	writeTarGz(t, artifact, map[string][]byte{
		"app_2.0.0/README.md": []byte("hello"),
		"app_2.0.0/app":       fakeBinary("archived"),
	})

	require.NoError(t, e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("archived"), got)
}

func TestEngine_InstallUpdate_ArchiveMissingBinary(t *testing.T) {
	e, target, _ := installFixture(t)

	artifact := filepath.Join(t.TempDir(), "app.tgz")
	writeTarGz(t, artifact, map[string][]byte{"other": fakeBinary("x")})

	err := e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in archive")

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("old"), got, "target must be untouched")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(target), ".app.new"))
}

func TestEngine_InstallUpdate_TooSmall(t *testing.T) {
	e, _, _ := installFixture(t)

	artifact := filepath.Join(t.TempDir(), "tiny")
	require.NoError(t, os.WriteFile(artifact, []byte("tiny"), 0o600))

	err := e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary too small")
}

func TestEngine_InstallUpdate_Managed(t *testing.T) {
	e, target, closes := installFixture(t)
	e.detect = func(context.Context, string) env.InstallKind { return env.InstallPacman }

	artifact := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.WriteFile(artifact, fakeBinary("new"), 0o600))

	err := e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact)
	require.ErrorIs(t, err, ErrManagedInstall)
	assert.Contains(t, err.Error(), "pacman")
	assert.Equal(t, 1, *closes)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("old"), got)
}

func TestEngine_InstallUpdate_MissingArtifact(t *testing.T) {
	e, _, _ := installFixture(t)

	err := e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open artifact")
}

func TestEngine_InstallUpdate_ResolvesExecutable(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "app-real")
	require.NoError(t, os.WriteFile(real, fakeBinary("old"), 0o755))
	link := filepath.Join(dir, "app")
	require.NoError(t, os.Symlink(real, link))

	e := newTestEngine(t, Config{CurrentVersion: "1.0.0"})
	e.executable = func() (string, error) { return link, nil }

	artifact := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.WriteFile(artifact, fakeBinary("new"), 0o600))

	require.NoError(t, e.InstallUpdate(context.Background(), entity.Candidate{Version: "2.0.0"}, artifact))

	got, err := os.ReadFile(real)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary("new"), got)
}

func TestSwapBinary_NoExistingTarget(t *testing.T) {
	dir := t.TempDir()
	staged := filepath.Join(dir, ".app.new")
	require.NoError(t, os.WriteFile(staged, []byte("bin"), 0o755))

	backup, err := swapBinary(staged, filepath.Join(dir, "app"))
	require.NoError(t, err)
	assert.Empty(t, backup)
	assert.FileExists(t, filepath.Join(dir, "app"))
}

func TestSanitizeTarPath(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		wantErr string
	}{
		{name: "nested", entry: "app_1.0.0/app"},
		{name: "plain", entry: "app"},
		{name: "dot prefix", entry: "./app"},
		{name: "absolute", entry: "/etc/passwd", wantErr: "absolute path"},
		{name: "traversal", entry: "../../etc/passwd", wantErr: "path traversal"},
		{name: "inner traversal", entry: "a/../../b", wantErr: "path traversal"},
		{name: "dots in name", entry: "app..bak", wantErr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sanitizeTarPath(tt.entry, t.TempDir())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
