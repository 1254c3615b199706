package styles

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/upgate/internal/domain/entity"
)

const historyTimeFormat = "2006-01-02 15:04"

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Text).
		Background(theme.SurfaceVariant).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// HistoryTableColumns returns columns for the update history table.
func HistoryTableColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Version", Width: 12},
		{Title: "Outcome", Width: 13},
		{Title: "Detail", Width: 48},
	}
}

// HistoryRow converts an update record to a table row.
func HistoryRow(rec entity.UpdateRecord) table.Row {
	version := rec.Version
	if version == "" {
		version = "-"
	}
	detail := rec.Detail
	if detail == "" {
		detail = rec.ArtifactPath
	}
	return table.Row{
		rec.RecordedAt.Local().Format(historyTimeFormat),
		version,
		string(rec.Outcome),
		detail,
	}
}

// RenderHistory renders records as a static table.
func RenderHistory(theme *Theme, records []entity.UpdateRecord) string {
	if len(records) == 0 {
		iconStyle := lipgloss.NewStyle().Foreground(theme.Accent)
		return fmt.Sprintf("\n  %s No update history yet\n", iconStyle.Render(IconDatabase))
	}

	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, HistoryRow(rec))
	}

	width := 0
	for _, c := range HistoryTableColumns() {
		width += c.Width + 2
	}
	t := NewStyledTable(theme, HistoryTableColumns(), rows, width, len(rows)+1)
	t.Blur()
	return "\n" + t.View() + "\n"
}
