package stats

import (
	"time"

	"github.com/raidledger/api/internal/model"
)

// Summary holds attendance counts for one toon, team, or raid.
type Summary struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Benched    int     `json:"benched"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Percentage is present / (total - benched) * 100. Benched raids do not
// count against a toon; an all-benched record set scores 0.
func Percentage(present, total, benched int) float64 {
	denominator := total - benched
	if denominator == 0 {
		return 0.0
	}
	return float64(present) / float64(denominator) * 100
}

func Summarize(records []model.Attendance) Summary {
	var s Summary
	for _, record := range records {
		switch record.Status {
		case model.StatusPresent:
			s.Present++
		case model.StatusAbsent:
			s.Absent++
		case model.StatusBenched:
			s.Benched++
		}
	}
	s.Total = len(records)
	s.Percentage = Percentage(s.Present, s.Total, s.Benched)
	return s
}

type Streaks struct {
	Current int `json:"currentStreak"`
	Longest int `json:"longestStreak"`
}

// ComputeStreaks expects records ordered oldest to newest. Current is the
// unbroken run of present records ending at the most recent one; Longest is
// the longest such run anywhere in the history.
func ComputeStreaks(records []model.Attendance) Streaks {
	var streaks Streaks
	run := 0
	for _, record := range records {
		if record.Status == model.StatusPresent {
			run++
			if run > streaks.Longest {
				streaks.Longest = run
			}
		} else {
			run = 0
		}
	}
	streaks.Current = run
	return streaks
}

// TeamView is a toon-by-raid attendance matrix over a team's most recent
// raids. Raids are ordered oldest to newest left to right.
type TeamView struct {
	GuildName string       `json:"guildName"`
	TeamName  string       `json:"teamName"`
	Raids     []RaidColumn `json:"raids"`
	Rows      []ToonRow    `json:"rows"`
}

type RaidColumn struct {
	RaidID       int64     `json:"raidId"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	ScenarioName string    `json:"scenarioName"`
}

type ToonRow struct {
	ToonID  int64   `json:"toonId"`
	Name    string  `json:"name"`
	Class   string  `json:"class"`
	Role    string  `json:"role"`
	Summary Summary `json:"summary"`
	Cells   []Cell  `json:"cells"`
}

// Cell is one toon/raid intersection. Recorded is false when no attendance
// row exists for the pair.
type Cell struct {
	Recorded    bool    `json:"recorded"`
	Status      string  `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	BenchedNote *string `json:"benchedNote,omitempty"`
	HasNote     bool    `json:"hasNote"`
}

// BuildTeamView assembles the matrix from raids (oldest to newest), roster
// toons, and the attendance records covering them.
func BuildTeamView(guildName, teamName string, raids []model.Raid, toons []model.Toon, records []model.Attendance) TeamView {
	view := TeamView{GuildName: guildName, TeamName: teamName}

	byPair := make(map[[2]int64]model.Attendance, len(records))
	for _, record := range records {
		byPair[[2]int64{record.RaidID, record.ToonID}] = record
	}

	for _, raid := range raids {
		column := RaidColumn{RaidID: raid.ID, ScheduledAt: raid.ScheduledAt}
		if raid.Scenario != nil {
			column.ScenarioName = raid.Scenario.Name
		}
		view.Raids = append(view.Raids, column)
	}

	for _, toon := range toons {
		row := ToonRow{
			ToonID: toon.ID,
			Name:   toon.Username,
			Class:  toon.Class,
			Role:   toon.Role,
		}
		var recorded []model.Attendance
		for _, raid := range raids {
			record, ok := byPair[[2]int64{raid.ID, toon.ID}]
			if !ok {
				row.Cells = append(row.Cells, Cell{})
				continue
			}
			recorded = append(recorded, record)
			row.Cells = append(row.Cells, Cell{
				Recorded:    true,
				Status:      record.Status,
				Notes:       record.Notes,
				BenchedNote: record.BenchedNote,
				HasNote:     record.HasNote(),
			})
		}
		row.Summary = Summarize(recorded)
		view.Rows = append(view.Rows, row)
	}

	return view
}
