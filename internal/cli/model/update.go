// Package model holds the Bubble Tea models behind interactive commands.
package model

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/upgate/internal/cli/styles"
	"github.com/bnema/upgate/internal/domain/entity"
)

const progressBarWidth = 40

// Updater is the part of the orchestrator the update model drives.
type Updater interface {
	CheckNow(ctx context.Context) error
	TriggerUpdate(proceed bool) error
	AwaitingDecision() bool
}

type updatePhase int

const (
	phaseChecking updatePhase = iota
	phaseDownloading
	phaseStandby
	phaseInstalling
	phaseDone
)

// LifecycleMsg forwards a lifecycle event into the program.
// Deferred is true when a subscriber held the install for a decision.
type LifecycleMsg struct {
	State    entity.LifecycleState
	Version  string
	Artifact string
	Deferred bool
}

// ProgressMsg forwards a progress event into the program.
type ProgressMsg struct {
	Event entity.ProgressEvent
}

// OutcomeMsg forwards a recorded outcome into the program.
type OutcomeMsg struct {
	Record entity.UpdateRecord
}

// CloseRequestedMsg is sent when the installer asks the application to close.
type CloseRequestedMsg struct{}

type checkDoneMsg struct {
	err error
}

// UpdateModel runs one update cycle: check, download, optional prompt, install.
type UpdateModel struct {
	ctx      context.Context
	updater  Updater
	renderer *styles.UpdateRenderer
	spinner  spinner.Model
	bar      progress.Model

	phase    updatePhase
	current  string
	version  string
	artifact string
	percent  int

	result  string
	err     error
	aborted bool
}

// NewUpdateModel creates the model. currentVersion is shown when no update is found.
func NewUpdateModel(ctx context.Context, theme *styles.Theme, updater Updater, currentVersion string) UpdateModel {
	return UpdateModel{
		ctx:      ctx,
		updater:  updater,
		renderer: styles.NewUpdateRenderer(theme),
		spinner:  styles.NewDefaultSpinner(theme),
		bar:      styles.NewProgressBar(theme, progressBarWidth),
		phase:    phaseChecking,
		current:  currentVersion,
	}
}

// Init implements tea.Model.
func (m UpdateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.check())
}

func (m UpdateModel) check() tea.Cmd {
	return func() tea.Msg {
		return checkDoneMsg{err: m.updater.CheckNow(m.ctx)}
	}
}

// Update implements tea.Model.
func (m UpdateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.phase == phaseDone {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseDone
			return m, tea.Quit
		}
		return m, nil

	case LifecycleMsg:
		m.handleLifecycle(msg)
		return m, nil

	case ProgressMsg:
		if msg.Event.State == entity.DownloadStateDownloading {
			m.percent = msg.Event.Percent
		}
		return m, nil

	case CloseRequestedMsg:
		if m.phase != phaseDone {
			m.phase = phaseInstalling
		}
		return m, nil

	case OutcomeMsg:
		return m.handleOutcome(msg.Record)
	}

	return m, nil
}

func (m UpdateModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.phase == phaseStandby {
			_ = m.updater.TriggerUpdate(false)
		}
		m.aborted = true
		return m, tea.Quit

	case "y", "enter":
		// The decision gate may not exist yet if the key arrives with the event.
		if m.phase != phaseStandby || !m.updater.AwaitingDecision() {
			return m, nil
		}
		if err := m.updater.TriggerUpdate(true); err != nil {
			m.err = err
			m.phase = phaseDone
			return m, tea.Quit
		}
		m.phase = phaseInstalling
		return m, nil

	case "n", "esc":
		if m.phase != phaseStandby || !m.updater.AwaitingDecision() {
			return m, nil
		}
		if err := m.updater.TriggerUpdate(false); err != nil {
			m.err = err
			m.phase = phaseDone
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m *UpdateModel) handleLifecycle(msg LifecycleMsg) {
	if m.phase == phaseDone {
		return
	}
	switch msg.State {
	case entity.LifecycleUpdateAvailable:
		m.version = msg.Version
		m.phase = phaseDownloading
	case entity.LifecycleDownloadStandby:
		m.version = msg.Version
		m.artifact = msg.Artifact
		if msg.Deferred {
			m.phase = phaseStandby
		} else {
			m.phase = phaseInstalling
		}
	}
}

func (m UpdateModel) handleOutcome(rec entity.UpdateRecord) (tea.Model, tea.Cmd) {
	if rec.Version != "" {
		m.version = rec.Version
	}

	switch rec.Outcome {
	case entity.UpdateOutcomeAvailable:
		if m.phase == phaseChecking {
			m.phase = phaseDownloading
		}
		return m, nil
	case entity.UpdateOutcomeStandby:
		m.artifact = rec.ArtifactPath
		return m, nil
	case entity.UpdateOutcomeNotAvailable:
		if rec.Detail != "" {
			m.err = errors.New(rec.Detail)
		} else {
			m.result = m.renderer.RenderUpToDate(m.current)
		}
	case entity.UpdateOutcomeInstalled:
		m.result = m.renderer.RenderInstalled(m.version)
	case entity.UpdateOutcomeCancelled:
		m.result = m.renderer.RenderSkipped(m.version, rec.Detail)
	case entity.UpdateOutcomeFailed:
		m.err = errors.New(rec.Detail)
	default:
		return m, nil
	}

	m.phase = phaseDone
	return m, tea.Quit
}

// View implements tea.Model.
func (m UpdateModel) View() string {
	if m.aborted {
		return ""
	}
	if m.err != nil {
		return m.renderer.RenderError(m.err)
	}

	switch m.phase {
	case phaseChecking:
		return m.renderer.RenderChecking(m.spinner.View())
	case phaseDownloading:
		return m.renderer.RenderAvailable(m.current, m.version, "") +
			m.renderer.RenderDownloading(m.spinner.View(), m.version, m.bar.ViewAs(float64(m.percent)/100))
	case phaseStandby:
		return m.renderer.RenderStandbyPrompt(m.version, m.artifact)
	case phaseInstalling:
		return m.renderer.RenderInstalling(m.spinner.View(), m.version)
	default:
		return m.result
	}
}

// Err returns the failure that ended the cycle, if any.
func (m UpdateModel) Err() error {
	return m.err
}

// Aborted reports whether the user quit before the cycle finished.
func (m UpdateModel) Aborted() bool {
	return m.aborted
}

// Ensure interface compliance.
var _ tea.Model = (*UpdateModel)(nil)
