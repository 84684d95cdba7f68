package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	db *gorm.DB
}

func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{db: db}
}

type CreateAttendanceRequest struct {
	RaidID      int64   `json:"raidId" binding:"required"`
	ToonID      int64   `json:"toonId" binding:"required"`
	Status      string  `json:"status" binding:"required"`
	Notes       *string `json:"notes"`
	BenchedNote *string `json:"benchedNote"`
}

func validateNotes(c *gin.Context, notes, benchedNote *string) bool {
	if notes != nil && strings.TrimSpace(*notes) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notes must not be blank"})
		return false
	}
	if benchedNote != nil && strings.TrimSpace(*benchedNote) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "benched note must not be blank"})
		return false
	}
	return true
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	var req CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raidId, toonId and status are required"})
		return
	}

	if !model.ValidAttendanceStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendance status"})
		return
	}
	if !validateNotes(c, req.Notes, req.BenchedNote) {
		return
	}

	var raid model.Raid
	if err := h.db.First(&raid, req.RaidID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "raid not found"})
		return
	}
	var toon model.Toon
	if err := h.db.First(&toon, req.ToonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "toon not found"})
		return
	}

	record := model.Attendance{
		RaidID:      req.RaidID,
		ToonID:      req.ToonID,
		Status:      req.Status,
		Notes:       req.Notes,
		BenchedNote: req.BenchedNote,
	}
	if err := h.db.Create(&record).Error; err != nil {
		saveError(c, err, "attendance already recorded for this raid and toon")
		return
	}

	middleware.RecordAttendanceWrite(record.Status)
	c.JSON(http.StatusCreated, record)
}

func (h *AttendanceHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Attendance{})
	if raidID := c.Query("raidId"); raidID != "" {
		query = query.Where("raid_id = ?", raidID)
	}
	if toonID := c.Query("toonId"); toonID != "" {
		query = query.Where("toon_id = ?", toonID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalCount int64
	query.Count(&totalCount)

	var records []model.Attendance
	query.Order("id").Offset(offset).Limit(limit).Find(&records)

	c.JSON(http.StatusOK, gin.H{
		"data":       records,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *AttendanceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var record model.Attendance
	if err := h.db.Preload("Toon").First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendance record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

type UpdateAttendanceRequest struct {
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
	BenchedNote *string `json:"benchedNote"`
	ClearNotes  bool    `json:"clearNotes"`
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var record model.Attendance
	if err := h.db.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendance record not found"})
		return
	}

	var req UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Status != nil && !model.ValidAttendanceStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attendance status"})
		return
	}
	if !validateNotes(c, req.Notes, req.BenchedNote) {
		return
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.BenchedNote != nil {
		updates["benched_note"] = *req.BenchedNote
	}
	if req.ClearNotes {
		updates["notes"] = nil
		updates["benched_note"] = nil
	}

	if len(updates) > 0 {
		if err := h.db.Model(&record).Updates(updates).Error; err != nil {
			saveError(c, err, "conflicting attendance update")
			return
		}
		if req.Status != nil {
			middleware.RecordAttendanceWrite(*req.Status)
		}
	}

	h.db.First(&record, id)
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Attendance{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "attendance record not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
