package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/warcraftlogs"
	"gorm.io/gorm"
)

type RaidHandler struct {
	db  *gorm.DB
	wcl *warcraftlogs.Client
}

// NewRaidHandler wires the raid router; wcl may be nil when WarcraftLogs
// credentials are not configured.
func NewRaidHandler(db *gorm.DB, wcl *warcraftlogs.Client) *RaidHandler {
	return &RaidHandler{db: db, wcl: wcl}
}

type CreateRaidRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	ScenarioID      int64     `json:"scenarioId" binding:"required"`
	TeamID          int64     `json:"teamId" binding:"required"`
	WarcraftlogsURL string    `json:"warcraftlogsUrl"`
}

func (h *RaidHandler) Create(c *gin.Context) {
	var req CreateRaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledAt, scenarioId and teamId are required"})
		return
	}

	var scenario model.Scenario
	if err := h.db.First(&scenario, req.ScenarioID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}
	var team model.Team
	if err := h.db.First(&team, req.TeamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	raid := model.Raid{
		ScheduledAt:     req.ScheduledAt,
		ScenarioID:      req.ScenarioID,
		TeamID:          req.TeamID,
		WarcraftlogsURL: req.WarcraftlogsURL,
	}
	if err := h.db.Create(&raid).Error; err != nil {
		saveError(c, err, "conflicting raid")
		return
	}

	c.JSON(http.StatusCreated, raid)
}

func (h *RaidHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Raid{})
	if teamID := c.Query("teamId"); teamID != "" {
		query = query.Where("team_id = ?", teamID)
	}
	if scenarioID := c.Query("scenarioId"); scenarioID != "" {
		query = query.Where("scenario_id = ?", scenarioID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("scheduled_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("scheduled_at <= ?", t)
		}
	}

	var totalCount int64
	query.Count(&totalCount)

	var raids []model.Raid
	query.Preload("Scenario").Order("scheduled_at DESC").Offset(offset).Limit(limit).Find(&raids)

	c.JSON(http.StatusOK, gin.H{
		"data":       raids,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *RaidHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var raid model.Raid
	if err := h.db.Preload("Scenario").First(&raid, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}

	c.JSON(http.StatusOK, raid)
}

type UpdateRaidRequest struct {
	ScheduledAt     *time.Time `json:"scheduledAt"`
	ScenarioID      *int64     `json:"scenarioId"`
	WarcraftlogsURL *string    `json:"warcraftlogsUrl"`
}

func (h *RaidHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var raid model.Raid
	if err := h.db.First(&raid, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}

	var req UpdateRaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
	}
	if req.ScenarioID != nil {
		var scenario model.Scenario
		if err := h.db.First(&scenario, *req.ScenarioID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
			return
		}
		updates["scenario_id"] = *req.ScenarioID
	}
	if req.WarcraftlogsURL != nil {
		updates["warcraftlogs_url"] = *req.WarcraftlogsURL
	}

	if len(updates) > 0 {
		if err := h.db.Model(&raid).Updates(updates).Error; err != nil {
			saveError(c, err, "conflicting raid update")
			return
		}
	}

	h.db.Preload("Scenario").First(&raid, id)
	c.JSON(http.StatusOK, raid)
}

// Delete removes the raid; its attendance rows go with it via cascade.
func (h *RaidHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Raid{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// SyncWarcraftlogs pulls the raid's report from WarcraftLogs, matches its
// participants against the team roster, and stores the report summary plus
// any unmatched names on the raid.
func (h *RaidHandler) SyncWarcraftlogs(c *gin.Context) {
	if h.wcl == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warcraftlogs integration is not configured"})
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var raid model.Raid
	if err := h.db.First(&raid, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}
	if raid.WarcraftlogsURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raid has no warcraftlogs url"})
		return
	}

	code, err := warcraftlogs.ParseReportCode(raid.WarcraftlogsURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid warcraftlogs url"})
		return
	}

	ctx := c.Request.Context()
	report, err := h.wcl.GetReport(ctx, code)
	if err != nil {
		log.Printf("warcraftlogs report fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch warcraftlogs report"})
		return
	}
	participants, err := h.wcl.GetParticipants(ctx, code)
	if err != nil {
		log.Printf("warcraftlogs participants fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch warcraftlogs participants"})
		return
	}

	var toons []model.Toon
	h.db.Joins("JOIN toon_teams ON toon_teams.toon_id = toons.id").
		Where("toon_teams.team_id = ?", raid.TeamID).
		Find(&toons)

	match := warcraftlogs.MatchParticipants(participants, toons)

	summary, err := json.Marshal(gin.H{
		"report": report,
		"match":  match,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode report summary"})
		return
	}

	updates := map[string]interface{}{
		"report_summary":         summary,
		"unmatched_participants": pq.StringArray(match.Unknown),
	}
	if err := h.db.Model(&raid).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"match":  match,
	})
}
