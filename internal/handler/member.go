package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

// MemberHandler serves the legacy guild roster. New rosters should link
// toons to teams directly.
type MemberHandler struct {
	db *gorm.DB
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

type CreateMemberRequest struct {
	GuildID     int64      `json:"guildId" binding:"required"`
	TeamID      *int64     `json:"teamId"`
	DisplayName string     `json:"displayName" binding:"required"`
	Rank        string     `json:"rank"`
	JoinDate    *time.Time `json:"joinDate"`
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guildId and displayName are required"})
		return
	}

	var guild model.Guild
	if err := h.db.First(&guild, req.GuildID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}
	if req.TeamID != nil {
		var team model.Team
		if err := h.db.First(&team, *req.TeamID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		if team.GuildID != req.GuildID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team does not belong to the specified guild"})
			return
		}
	}

	member := model.Member{
		GuildID:     req.GuildID,
		TeamID:      req.TeamID,
		DisplayName: req.DisplayName,
		Rank:        req.Rank,
		JoinDate:    req.JoinDate,
		IsActive:    true,
	}
	if err := h.db.Create(&member).Error; err != nil {
		saveError(c, err, "display name already exists in this guild")
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Member{})
	if guildID := c.Query("guildId"); guildID != "" {
		query = query.Where("guild_id = ?", guildID)
	}
	if teamID := c.Query("teamId"); teamID != "" {
		query = query.Where("team_id = ?", teamID)
	}
	if active := c.Query("isActive"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var totalCount int64
	query.Count(&totalCount)

	var members []model.Member
	query.Order("id").Offset(offset).Limit(limit).Find(&members)

	c.JSON(http.StatusOK, gin.H{
		"data":       members,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var member model.Member
	if err := h.db.First(&member, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	c.JSON(http.StatusOK, member)
}

type UpdateMemberRequest struct {
	TeamID      *int64     `json:"teamId"`
	DisplayName *string    `json:"displayName"`
	Rank        *string    `json:"rank"`
	JoinDate    *time.Time `json:"joinDate"`
	IsActive    *bool      `json:"isActive"`
}

func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var member model.Member
	if err := h.db.First(&member, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.TeamID != nil {
		var team model.Team
		if err := h.db.First(&team, *req.TeamID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
		if team.GuildID != member.GuildID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "team does not belong to the member's guild"})
			return
		}
		updates["team_id"] = *req.TeamID
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Rank != nil {
		updates["rank"] = *req.Rank
	}
	if req.JoinDate != nil {
		updates["join_date"] = *req.JoinDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&member).Updates(updates).Error; err != nil {
			saveError(c, err, "display name already exists in this guild")
			return
		}
	}

	h.db.First(&member, id)
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Member{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
