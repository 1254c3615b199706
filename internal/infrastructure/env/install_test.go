package env

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallKind_Managed(t *testing.T) {
	assert.False(t, InstallStandalone.Managed())
	assert.False(t, InstallKind("").Managed())
	assert.True(t, InstallFlatpak.Managed())
	assert.True(t, InstallPacman.Managed())
	assert.True(t, InstallDpkg.Managed())
}

func TestDetect_FlatpakMarker(t *testing.T) {
	marker := filepath.Join(t.TempDir(), ".flatpak-info")
	assert.NoError(t, os.WriteFile(marker, []byte("[Application]\n"), 0o644))

	prev := flatpakInfoPath
	flatpakInfoPath = marker
	t.Cleanup(func() { flatpakInfoPath = prev })

	assert.True(t, IsFlatpak())
	assert.Equal(t, InstallFlatpak, Detect(context.Background(), "/usr/bin/anything"))
}

func TestDetect_UnownedFileIsStandalone(t *testing.T) {
	prev := flatpakInfoPath
	flatpakInfoPath = filepath.Join(t.TempDir(), "missing")
	t.Cleanup(func() { flatpakInfoPath = prev })

	target := filepath.Join(t.TempDir(), "app")
	assert.NoError(t, os.WriteFile(target, []byte("#!/bin/sh\n"), 0o755))

	assert.Equal(t, InstallStandalone, Detect(context.Background(), target))
}

func TestDetect_MissingTargetIsStandalone(t *testing.T) {
	prev := flatpakInfoPath
	flatpakInfoPath = filepath.Join(t.TempDir(), "missing")
	t.Cleanup(func() { flatpakInfoPath = prev })

	assert.Equal(t, InstallStandalone, Detect(context.Background(), "/nonexistent/path/app"))
}
