// Package env detects how the updated application was installed.
package env

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// InstallKind describes who owns the installed binary.
type InstallKind string

const (
	// InstallStandalone means the binary was placed by hand or by upgate itself.
	InstallStandalone InstallKind = "standalone"
	// InstallFlatpak means the application runs inside a Flatpak sandbox.
	InstallFlatpak InstallKind = "flatpak"
	// InstallPacman means the binary is owned by a pacman (or AUR) package.
	InstallPacman InstallKind = "pacman"
	// InstallDpkg means the binary is owned by a Debian package.
	InstallDpkg InstallKind = "dpkg"
)

// Managed reports whether a package manager owns the binary.
// Managed installs must be updated through that package manager.
func (k InstallKind) Managed() bool {
	return k != InstallStandalone && k != ""
}

var flatpakInfoPath = "/.flatpak-info"

// IsFlatpak returns true if the application is running inside a Flatpak sandbox.
func IsFlatpak() bool {
	_, err := os.Stat(flatpakInfoPath)
	return err == nil
}

// Detect classifies target. Symlinks are resolved before querying package managers.
func Detect(ctx context.Context, target string) InstallKind {
	if IsFlatpak() {
		return InstallFlatpak
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return InstallStandalone
	}
	if ownedBy(ctx, "pacman", "-Qo", resolved) {
		return InstallPacman
	}
	if ownedBy(ctx, "dpkg-query", "-S", resolved) {
		return InstallDpkg
	}
	return InstallStandalone
}

// ownedBy runs a package manager ownership query; exit status 0 means owned.
func ownedBy(ctx context.Context, tool string, args ...string) bool {
	bin, err := exec.LookPath(tool)
	if err != nil {
		return false
	}
	return exec.CommandContext(ctx, bin, args...).Run() == nil
}
