package report

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/stats"
)

func sampleView() stats.TeamView {
	scenario := &model.Scenario{Name: "Siege of Orgrimmar"}
	raids := []model.Raid{
		{ID: 1, ScheduledAt: time.Date(2024, 4, 2, 19, 0, 0, 0, time.UTC), Scenario: scenario},
		{ID: 2, ScheduledAt: time.Date(2024, 4, 9, 19, 0, 0, 0, time.UTC), Scenario: scenario},
	}
	toons := []model.Toon{
		{ID: 1, Username: "Pewlaser", Class: model.ClassMage, Role: model.RoleDPS},
		{ID: 2, Username: "Brickwall", Class: model.ClassWarrior, Role: model.RoleTank},
	}
	note := "connection issues"
	records := []model.Attendance{
		{RaidID: 1, ToonID: 1, Status: model.StatusPresent},
		{RaidID: 2, ToonID: 1, Status: model.StatusAbsent, Notes: &note},
		{RaidID: 1, ToonID: 2, Status: model.StatusBenched},
	}
	return stats.BuildTeamView("Ashes of Draenor", "Weekend Warriors", raids, toons, records)
}

func TestRenderTeamProducesPNG(t *testing.T) {
	g := NewGenerator()

	data, err := g.RenderTeam(sampleView())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, canvasWidth, bounds.Dx())
	assert.Greater(t, bounds.Dy(), int(headerHeight), "canvas covers header plus grid")
}

func TestRenderTeamGrowsWithRoster(t *testing.T) {
	g := NewGenerator()

	view := sampleView()
	small, err := g.RenderTeam(view)
	require.NoError(t, err)

	view.Rows = append(view.Rows, view.Rows...)
	large, err := g.RenderTeam(view)
	require.NoError(t, err)

	smallImg, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	largeImg, err := png.Decode(bytes.NewReader(large))
	require.NoError(t, err)
	assert.Greater(t, largeImg.Bounds().Dy(), smallImg.Bounds().Dy())
}

func TestCollectFootnotes(t *testing.T) {
	view := sampleView()

	notes := collectFootnotes(view)
	require.Len(t, notes, 1)
	assert.Equal(t, 1, notes[0].marker)
	assert.Equal(t, "Pewlaser: connection issues", notes[0].text)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, colorPresent, statusColor(model.StatusPresent))
	assert.Equal(t, colorBenched, statusColor(model.StatusBenched))
	assert.Equal(t, colorEmpty, statusColor(""), "unrecorded cells use the empty fill")
}
