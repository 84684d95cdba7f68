package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raidledger/api/internal/model"
)

func records(statuses ...string) []model.Attendance {
	out := make([]model.Attendance, len(statuses))
	for i, status := range statuses {
		out[i] = model.Attendance{Status: status}
	}
	return out
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 100.0, Percentage(2, 3, 1), "benched raids do not count against a toon")
	assert.Equal(t, 0.0, Percentage(0, 2, 2), "all benched scores zero, not a division error")
	assert.Equal(t, 0.0, Percentage(0, 0, 0))
	assert.InDelta(t, 66.66, Percentage(2, 3, 0), 0.01)
}

func TestSummarize(t *testing.T) {
	s := Summarize(records(
		model.StatusPresent, model.StatusPresent, model.StatusBenched, model.StatusAbsent,
	))

	assert.Equal(t, 2, s.Present)
	assert.Equal(t, 1, s.Absent)
	assert.Equal(t, 1, s.Benched)
	assert.Equal(t, 4, s.Total)
	assert.InDelta(t, 66.66, s.Percentage, 0.01)
}

func TestComputeStreaks(t *testing.T) {
	s := ComputeStreaks(records(model.StatusAbsent, model.StatusPresent, model.StatusPresent))
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, 2, s.Longest)

	s = ComputeStreaks(records(model.StatusPresent, model.StatusAbsent, model.StatusPresent))
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.Longest)

	s = ComputeStreaks(records(model.StatusPresent, model.StatusPresent, model.StatusBenched))
	assert.Equal(t, 0, s.Current, "benched breaks the trailing run")
	assert.Equal(t, 2, s.Longest)

	s = ComputeStreaks(nil)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 0, s.Longest)
}

func TestBuildTeamView(t *testing.T) {
	scenario := &model.Scenario{Name: "Throne of Thunder"}
	raids := []model.Raid{
		{ID: 1, ScheduledAt: time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC), Scenario: scenario},
		{ID: 2, ScheduledAt: time.Date(2024, 3, 12, 19, 0, 0, 0, time.UTC), Scenario: scenario},
	}
	toons := []model.Toon{
		{ID: 10, Username: "Pewlaser", Class: model.ClassMage, Role: model.RoleDPS},
		{ID: 11, Username: "Brickwall", Class: model.ClassWarrior, Role: model.RoleTank},
	}
	note := "left early"
	attendance := []model.Attendance{
		{RaidID: 1, ToonID: 10, Status: model.StatusPresent},
		{RaidID: 2, ToonID: 10, Status: model.StatusAbsent, Notes: &note},
		{RaidID: 2, ToonID: 11, Status: model.StatusPresent},
	}

	view := BuildTeamView("Ashes of Draenor", "Weekend Warriors", raids, toons, attendance)

	require.Len(t, view.Raids, 2)
	assert.Equal(t, "Throne of Thunder", view.Raids[0].ScenarioName)

	require.Len(t, view.Rows, 2)

	mage := view.Rows[0]
	require.Len(t, mage.Cells, 2)
	assert.True(t, mage.Cells[0].Recorded)
	assert.Equal(t, model.StatusPresent, mage.Cells[0].Status)
	assert.True(t, mage.Cells[1].HasNote)
	assert.Equal(t, 2, mage.Summary.Total)
	assert.Equal(t, 50.0, mage.Summary.Percentage)

	tank := view.Rows[1]
	assert.False(t, tank.Cells[0].Recorded, "missing pair renders an empty cell")
	assert.Equal(t, 1, tank.Summary.Total, "unrecorded raids do not count toward the summary")
	assert.Equal(t, 100.0, tank.Summary.Percentage)
}

func TestRaidWeek(t *testing.T) {
	// Wednesday 2024-03-13 noon Pacific falls in the week that reset the
	// previous day.
	wednesday := time.Date(2024, 3, 13, 12, 0, 0, 0, pacific)
	start, end := RaidWeek(wednesday)

	assert.Equal(t, time.Tuesday, start.Weekday())
	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, pacific), start)
	assert.Equal(t, start.AddDate(0, 0, 7), end)

	// Tuesday before the reset hour still belongs to the prior week.
	early := time.Date(2024, 3, 12, 8, 59, 0, 0, pacific)
	start, _ = RaidWeek(early)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, pacific), start)

	// At the reset instant the new week begins.
	exact := time.Date(2024, 3, 12, 9, 0, 0, 0, pacific)
	start, _ = RaidWeek(exact)
	assert.Equal(t, exact, start)
}
