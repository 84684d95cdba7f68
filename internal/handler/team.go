package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type TeamHandler struct {
	db *gorm.DB
}

func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	GuildID     int64  `json:"guildId" binding:"required"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and guildId are required"})
		return
	}

	var guild model.Guild
	if err := h.db.First(&guild, req.GuildID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}

	user := middleware.CurrentUser(c)
	team := model.Team{
		Name:        req.Name,
		Description: req.Description,
		GuildID:     req.GuildID,
		CreatedByID: &user.ID,
		IsActive:    true,
	}
	if err := h.db.Create(&team).Error; err != nil {
		saveError(c, err, "team name already exists in this guild")
		return
	}

	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Team{})
	if guildID := c.Query("guildId"); guildID != "" {
		query = query.Where("guild_id = ?", guildID)
	}
	if active := c.Query("isActive"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var totalCount int64
	query.Count(&totalCount)

	var teams []model.Team
	query.Order("id").Offset(offset).Limit(limit).Find(&teams)

	c.JSON(http.StatusOK, gin.H{
		"data":       teams,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var team model.Team
	if err := h.db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	c.JSON(http.StatusOK, team)
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var team model.Team
	if err := h.db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&team).Updates(updates).Error; err != nil {
			saveError(c, err, "team name already exists in this guild")
			return
		}
	}

	h.db.First(&team, id)
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Team{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Roster returns the toons linked to a team.
func (h *TeamHandler) Roster(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var team model.Team
	if err := h.db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	var toons []model.Toon
	h.db.Joins("JOIN toon_teams ON toon_teams.toon_id = toons.id").
		Where("toon_teams.team_id = ?", id).
		Order("toons.username").
		Find(&toons)

	c.JSON(http.StatusOK, gin.H{"teamId": id, "toons": toons})
}

type RosterLinkRequest struct {
	ToonID int64 `json:"toonId" binding:"required"`
}

// AddToon links a toon to the team roster.
func (h *TeamHandler) AddToon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RosterLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toonId is required"})
		return
	}

	var team model.Team
	if err := h.db.First(&team, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}
	var toon model.Toon
	if err := h.db.First(&toon, req.ToonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	link := model.ToonTeam{ToonID: req.ToonID, TeamID: id}
	if err := h.db.Create(&link).Error; err != nil {
		saveError(c, err, "toon already on this team")
		return
	}

	c.JSON(http.StatusCreated, link)
}

// RemoveToon unlinks a toon from the roster.
func (h *TeamHandler) RemoveToon(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	toonID, ok := parseID(c, "toonId")
	if !ok {
		return
	}

	result := h.db.Where("team_id = ? AND toon_id = ?", id, toonID).Delete(&model.ToonTeam{})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not on this team"})
		return
	}

	c.Status(http.StatusNoContent)
}
