package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type GuildHandler struct {
	db *gorm.DB
}

func NewGuildHandler(db *gorm.DB) *GuildHandler {
	return &GuildHandler{db: db}
}

type CreateGuildRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *GuildHandler) Create(c *gin.Context) {
	var req CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	user := middleware.CurrentUser(c)
	guild := model.Guild{Name: req.Name, CreatedByID: &user.ID}
	if err := h.db.Create(&guild).Error; err != nil {
		saveError(c, err, "guild name already exists")
		return
	}

	c.JSON(http.StatusCreated, guild)
}

func (h *GuildHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	var totalCount int64
	h.db.Model(&model.Guild{}).Count(&totalCount)

	var guilds []model.Guild
	h.db.Order("id").Offset(offset).Limit(limit).Find(&guilds)

	c.JSON(http.StatusOK, gin.H{
		"data":       guilds,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *GuildHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var guild model.Guild
	if err := h.db.Preload("Teams").First(&guild, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}

	c.JSON(http.StatusOK, guild)
}

type UpdateGuildRequest struct {
	Name *string `json:"name"`
}

func (h *GuildHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var guild model.Guild
	if err := h.db.First(&guild, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}

	var req UpdateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name != nil {
		if err := h.db.Model(&guild).Update("name", *req.Name).Error; err != nil {
			saveError(c, err, "guild name already exists")
			return
		}
	}

	c.JSON(http.StatusOK, guild)
}

// Delete removes the guild; teams and members go with it via the cascade
// foreign keys.
func (h *GuildHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Guild{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
