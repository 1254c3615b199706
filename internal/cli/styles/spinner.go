package styles

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// SpinnerType defines available spinner styles.
type SpinnerType int

const (
	SpinnerDots SpinnerType = iota
	SpinnerLine
	SpinnerMiniDot
	SpinnerPulse
)

// NewStyledSpinner creates a themed spinner.
func NewStyledSpinner(theme *Theme, spinnerType SpinnerType) spinner.Model {
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	switch spinnerType {
	case SpinnerLine:
		s.Spinner = spinner.Line
	case SpinnerMiniDot:
		s.Spinner = spinner.MiniDot
	case SpinnerPulse:
		s.Spinner = spinner.Pulse
	default:
		s.Spinner = spinner.Dot
	}

	return s
}

// NewDefaultSpinner creates the default themed spinner.
func NewDefaultSpinner(theme *Theme) spinner.Model {
	return NewStyledSpinner(theme, SpinnerDots)
}

// NewProgressBar creates a themed download progress bar.
func NewProgressBar(theme *Theme, width int) progress.Model {
	p := progress.New(
		progress.WithSolidFill(string(theme.Accent)),
		progress.WithWidth(width),
	)
	p.EmptyColor = string(theme.SurfaceVariant)
	return p
}
