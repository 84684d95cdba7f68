package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/stats"
	"gorm.io/gorm"
)

const (
	defaultViewRaids = 10
	maxViewRaids     = 50
)

type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// ToonStats returns attendance counts, percentage, and streaks for a toon.
func (h *StatsHandler) ToonStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var toon model.Toon
	if err := h.db.First(&toon, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	var records []model.Attendance
	h.db.Joins("JOIN raids ON raids.id = attendance.raid_id").
		Where("attendance.toon_id = ?", id).
		Order("raids.scheduled_at ASC").
		Find(&records)

	c.JSON(http.StatusOK, gin.H{
		"toon":    toon,
		"summary": stats.Summarize(records),
		"streaks": stats.ComputeStreaks(records),
	})
}

// RaidStats returns attendance counts for a single raid.
func (h *StatsHandler) RaidStats(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var raid model.Raid
	if err := h.db.First(&raid, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}

	var records []model.Attendance
	h.db.Where("raid_id = ?", id).Find(&records)

	c.JSON(http.StatusOK, gin.H{
		"raidId":  raid.ID,
		"summary": stats.Summarize(records),
	})
}

// teamViewData loads everything the team view needs. The raids slice comes
// back oldest to newest.
func (h *StatsHandler) teamViewData(c *gin.Context, teamID int64, raidCount int) (stats.TeamView, bool) {
	var team model.Team
	if err := h.db.Preload("Guild").First(&team, teamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return stats.TeamView{}, false
	}

	var raids []model.Raid
	h.db.Preload("Scenario").
		Where("team_id = ?", teamID).
		Order("scheduled_at DESC").
		Limit(raidCount).
		Find(&raids)
	// Flip to oldest-first for display.
	for i, j := 0, len(raids)-1; i < j; i, j = i+1, j-1 {
		raids[i], raids[j] = raids[j], raids[i]
	}

	var toons []model.Toon
	h.db.Joins("JOIN toon_teams ON toon_teams.toon_id = toons.id").
		Where("toon_teams.team_id = ?", teamID).
		Order("toons.username").
		Find(&toons)

	raidIDs := make([]int64, len(raids))
	for i, raid := range raids {
		raidIDs[i] = raid.ID
	}
	var records []model.Attendance
	if len(raidIDs) > 0 {
		h.db.Where("raid_id IN ?", raidIDs).Find(&records)
	}

	guildName := ""
	if team.Guild != nil {
		guildName = team.Guild.Name
	}

	return stats.BuildTeamView(guildName, team.Name, raids, toons, records), true
}

// TeamView returns the toon-by-raid matrix for the team's most recent N
// raids (query param "raids", 1-50, default 10).
func (h *StatsHandler) TeamView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	raidCount, _ := strconv.Atoi(c.DefaultQuery("raids", strconv.Itoa(defaultViewRaids)))
	if raidCount < 1 || raidCount > maxViewRaids {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raids must be between 1 and 50"})
		return
	}

	view, ok := h.teamViewData(c, id, raidCount)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, view)
}

// WeeklyBenched lists this raid week's benched records for a team. The raid
// week runs Tuesday 09:00 Pacific through the next Tuesday 09:00.
func (h *StatsHandler) WeeklyBenched(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var team model.Team
	if err := h.db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	weekStart, weekEnd := stats.RaidWeek(time.Now())

	var records []model.Attendance
	h.db.Preload("Toon").
		Joins("JOIN raids ON raids.id = attendance.raid_id").
		Where("raids.team_id = ?", id).
		Where("attendance.status = ?", model.StatusBenched).
		Where("raids.scheduled_at >= ? AND raids.scheduled_at < ?", weekStart, weekEnd).
		Find(&records)

	c.JSON(http.StatusOK, gin.H{
		"teamId":    id,
		"weekStart": weekStart,
		"weekEnd":   weekEnd,
		"benched":   records,
	})
}
