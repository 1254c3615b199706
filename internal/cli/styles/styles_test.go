package styles

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/upgate/internal/domain/build"
	"github.com/bnema/upgate/internal/domain/entity"
)

func TestUpdateRenderer(t *testing.T) {
	r := NewUpdateRenderer(NewTheme())

	assert.Contains(t, r.RenderUpToDate("1.2.3"), "1.2.3")
	assert.Contains(t, r.RenderAvailable("1.0.0", "2.0.0", "line one\nline two"), "line two")
	assert.Contains(t, r.RenderStandbyPrompt("2.0.0", "/tmp/app.tar.gz"), "/tmp/app.tar.gz")
	assert.Contains(t, r.RenderInstalled("2.0.0"), "installed")
	assert.Contains(t, r.RenderSkipped("2.0.0", "declined"), "declined")
	assert.Contains(t, r.RenderError(errors.New("boom")), "boom")
	assert.Contains(t, r.RenderDownloading("*", "2.0.0", "[===]"), "[===]")
}

func TestHistoryRow(t *testing.T) {
	at := time.Date(2025, 4, 5, 6, 7, 0, 0, time.Local)

	row := HistoryRow(entity.UpdateRecord{
		Outcome:      entity.UpdateOutcomeStandby,
		ArtifactPath: "/var/cache/upgate/app.tar.gz",
		RecordedAt:   at,
	})

	assert.Equal(t, "2025-04-05 06:07", row[0])
	assert.Equal(t, "-", row[1])
	assert.Equal(t, "standby", row[2])
	assert.Equal(t, "/var/cache/upgate/app.tar.gz", row[3])
}

func TestRenderHistory_Empty(t *testing.T) {
	assert.Contains(t, RenderHistory(NewTheme(), nil), "No update history")
}

func TestAboutRenderer_DevVersion(t *testing.T) {
	out := NewAboutRenderer(NewTheme()).Render(build.Info{Commit: "0123456789"})
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "0123456")
	assert.NotContains(t, out, "0123456789")
}
