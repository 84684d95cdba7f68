package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type ScenarioHandler struct {
	db *gorm.DB
}

func NewScenarioHandler(db *gorm.DB) *ScenarioHandler {
	return &ScenarioHandler{db: db}
}

type CreateScenarioRequest struct {
	Name string `json:"name" binding:"required"`
	Mop  bool   `json:"mop"`
}

func (h *ScenarioHandler) Create(c *gin.Context) {
	var req CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	scenario := model.Scenario{Name: req.Name, Mop: req.Mop, IsActive: true}
	if err := h.db.Create(&scenario).Error; err != nil {
		saveError(c, err, "scenario name already exists")
		return
	}

	c.JSON(http.StatusCreated, scenario)
}

func (h *ScenarioHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Scenario{})
	if active := c.Query("isActive"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var totalCount int64
	query.Count(&totalCount)

	var scenarios []model.Scenario
	query.Order("id").Offset(offset).Limit(limit).Find(&scenarios)

	c.JSON(http.StatusOK, gin.H{
		"data":       scenarios,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *ScenarioHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var scenario model.Scenario
	if err := h.db.First(&scenario, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	c.JSON(http.StatusOK, scenario)
}

// Variations lists the synthesized difficulty/size combinations; they are
// derived on demand, never stored.
func (h *ScenarioHandler) Variations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var scenario model.Scenario
	if err := h.db.First(&scenario, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": scenario.Variations()})
}

type UpdateScenarioRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
	Mop      *bool   `json:"mop"`
}

func (h *ScenarioHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var scenario model.Scenario
	if err := h.db.First(&scenario, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	var req UpdateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Mop != nil {
		updates["mop"] = *req.Mop
	}

	if len(updates) > 0 {
		if err := h.db.Model(&scenario).Updates(updates).Error; err != nil {
			saveError(c, err, "scenario name already exists")
			return
		}
	}

	h.db.First(&scenario, id)
	c.JSON(http.StatusOK, scenario)
}

func (h *ScenarioHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Scenario{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "scenario not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
