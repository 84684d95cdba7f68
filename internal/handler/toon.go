package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type ToonHandler struct {
	db *gorm.DB
}

func NewToonHandler(db *gorm.DB) *ToonHandler {
	return &ToonHandler{db: db}
}

type CreateToonRequest struct {
	Username string `json:"username" binding:"required"`
	IsMain   bool   `json:"isMain"`
	Class    string `json:"class" binding:"required"`
	Role     string `json:"role" binding:"required"`
	TeamID   *int64 `json:"teamId"`
}

func (h *ToonHandler) Create(c *gin.Context) {
	var req CreateToonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, class and role are required"})
		return
	}

	if !model.ValidClass(req.Class) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class"})
		return
	}
	if !model.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if req.TeamID != nil {
		var team model.Team
		if err := h.db.First(&team, *req.TeamID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
			return
		}
	}

	toon := model.Toon{
		Username: req.Username,
		IsMain:   req.IsMain,
		Class:    req.Class,
		Role:     req.Role,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&toon).Error; err != nil {
			return err
		}
		if req.TeamID != nil {
			return tx.Create(&model.ToonTeam{ToonID: toon.ID, TeamID: *req.TeamID}).Error
		}
		return nil
	})
	if err != nil {
		saveError(c, err, "toon username already exists")
		return
	}

	c.JSON(http.StatusCreated, toon)
}

func (h *ToonHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Toon{})
	if teamID := c.Query("teamId"); teamID != "" {
		query = query.Joins("JOIN toon_teams ON toon_teams.toon_id = toons.id").
			Where("toon_teams.team_id = ?", teamID)
	}
	if class := c.Query("class"); class != "" {
		query = query.Where("class = ?", class)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var totalCount int64
	query.Count(&totalCount)

	var toons []model.Toon
	query.Order("toons.id").Offset(offset).Limit(limit).Find(&toons)

	c.JSON(http.StatusOK, gin.H{
		"data":       toons,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *ToonHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var toon model.Toon
	if err := h.db.First(&toon, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	c.JSON(http.StatusOK, toon)
}

type UpdateToonRequest struct {
	Username *string `json:"username"`
	IsMain   *bool   `json:"isMain"`
	Class    *string `json:"class"`
	Role     *string `json:"role"`
}

func (h *ToonHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var toon model.Toon
	if err := h.db.First(&toon, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	var req UpdateToonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Class != nil && !model.ValidClass(*req.Class) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class"})
		return
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.IsMain != nil {
		updates["is_main"] = *req.IsMain
	}
	if req.Class != nil {
		updates["class"] = *req.Class
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}

	if len(updates) > 0 {
		if err := h.db.Model(&toon).Updates(updates).Error; err != nil {
			saveError(c, err, "toon username already exists")
			return
		}
	}

	h.db.First(&toon, id)
	c.JSON(http.StatusOK, toon)
}

// Delete removes the toon and, via cascade, its attendance and team links.
func (h *ToonHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Toon{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
