package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/auth"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type InviteHandler struct {
	db *gorm.DB
}

func NewInviteHandler(db *gorm.DB) *InviteHandler {
	return &InviteHandler{db: db}
}

type CreateInviteRequest struct {
	IsSuperuserInvite bool       `json:"isSuperuserInvite"`
	ExpiresAt         *time.Time `json:"expiresAt"`
}

func (h *InviteHandler) Create(c *gin.Context) {
	// All fields are optional, so an empty body is fine, but a malformed
	// one is still rejected.
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user := middleware.CurrentUser(c)

	// Retry on the rare code collision; the unique index is authoritative.
	var invite model.Invite
	for attempt := 0; attempt < 3; attempt++ {
		code, err := auth.GenerateInviteCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate invite code"})
			return
		}
		invite = model.Invite{
			Code:              code,
			CreatedByID:       &user.ID,
			IsActive:          true,
			IsSuperuserInvite: req.IsSuperuserInvite,
			ExpiresAt:         req.ExpiresAt,
		}
		err = h.db.Create(&invite).Error
		if err == nil {
			c.JSON(http.StatusCreated, invite)
			return
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate a unique invite code"})
}

func (h *InviteHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Invite{})
	if active := c.Query("isActive"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var totalCount int64
	query.Count(&totalCount)

	var invites []model.Invite
	query.Order("id").Offset(offset).Limit(limit).Find(&invites)

	c.JSON(http.StatusOK, gin.H{
		"data":       invites,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *InviteHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var invite model.Invite
	if err := h.db.First(&invite, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}

	c.JSON(http.StatusOK, invite)
}

// Deactivate withdraws an unused invite code.
func (h *InviteHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var invite model.Invite
	if err := h.db.First(&invite, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}

	if err := h.db.Model(&invite).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	invite.IsActive = false
	c.JSON(http.StatusOK, invite)
}
