package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UpdateRenderer renders update status messages with styled output.
type UpdateRenderer struct {
	theme *Theme
}

// NewUpdateRenderer creates a new update renderer with the given theme.
func NewUpdateRenderer(theme *Theme) *UpdateRenderer {
	return &UpdateRenderer{theme: theme}
}

// RenderChecking renders the "checking for updates" message.
func (*UpdateRenderer) RenderChecking(spinner string) string {
	return fmt.Sprintf("\n  %s Checking for updates...\n", spinner)
}

// RenderUpToDate renders the "already up to date" message.
func (r *UpdateRenderer) RenderUpToDate(version string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Success)

	return fmt.Sprintf(
		"\n  %s Already up to date (%s)\n",
		iconStyle.Render(IconCheck),
		r.theme.Highlight.Render(version),
	)
}

// RenderAvailable renders the "update available" message.
func (r *UpdateRenderer) RenderAvailable(current, latest, notes string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	versionStyle := r.theme.Highlight

	out := fmt.Sprintf(
		"\n  %s Update available: %s %s %s\n",
		iconStyle.Render(IconRocket),
		versionStyle.Render(current),
		iconStyle.Render(IconArrow),
		versionStyle.Render(latest),
	)
	if notes = strings.TrimSpace(notes); notes != "" {
		out += r.theme.Subtle.Render(indent(notes, "     ")) + "\n"
	}
	return out
}

// RenderDownloading renders the transfer line with a progress bar.
func (r *UpdateRenderer) RenderDownloading(spinner, version, bar string) string {
	return fmt.Sprintf(
		"\n  %s Downloading %s\n  %s\n",
		spinner,
		r.theme.Highlight.Render(version),
		bar,
	)
}

// RenderStandbyPrompt asks whether to install the downloaded artifact.
func (r *UpdateRenderer) RenderStandbyPrompt(version, artifact string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Warning)

	return fmt.Sprintf(
		"\n  %s %s downloaded to %s\n  Install now? %s %s  %s %s\n",
		iconStyle.Render(IconPause),
		r.theme.Highlight.Render(version),
		r.theme.Subtle.Render(artifact),
		r.theme.HelpKey.Render("y"),
		r.theme.HelpDesc.Render("install"),
		r.theme.HelpKey.Render("n"),
		r.theme.HelpDesc.Render("skip"),
	)
}

// RenderInstalling renders the "installing" message with spinner.
func (r *UpdateRenderer) RenderInstalling(spinner, version string) string {
	return fmt.Sprintf(
		"\n  %s Installing %s...\n",
		spinner,
		r.theme.Highlight.Render(version),
	)
}

// RenderInstalled renders the success message.
func (r *UpdateRenderer) RenderInstalled(version string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Success)

	return fmt.Sprintf(
		"\n  %s Update %s installed\n",
		iconStyle.Render(IconCheck),
		r.theme.Highlight.Render(version),
	)
}

// RenderSkipped renders the message shown when the update was not installed.
func (r *UpdateRenderer) RenderSkipped(version, reason string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Warning)

	return fmt.Sprintf(
		"\n  %s Update %s skipped: %s\n",
		iconStyle.Render(IconStop),
		r.theme.Highlight.Render(version),
		reason,
	)
}

// RenderError renders an error message.
func (r *UpdateRenderer) RenderError(err error) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Error)

	return fmt.Sprintf(
		"\n  %s Update failed: %v\n",
		iconStyle.Render(IconX),
		err,
	)
}

// RenderDevBuild renders the "dev build" skip message.
func (r *UpdateRenderer) RenderDevBuild() string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Warning)
	return fmt.Sprintf(
		"\n  %s Development build - update check skipped\n",
		iconStyle.Render(IconInfo),
	)
}

// RenderWatching renders the idle line of the watch command.
func (r *UpdateRenderer) RenderWatching(interval, next string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	return fmt.Sprintf(
		"  %s Watching for updates every %s (next check %s)\n",
		iconStyle.Render(IconClock),
		r.theme.Highlight.Render(interval),
		r.theme.Subtle.Render(next),
	)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
