package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/auth"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type TokenHandler struct {
	db *gorm.DB
}

func NewTokenHandler(db *gorm.DB) *TokenHandler {
	return &TokenHandler{db: db}
}

type CreateTokenRequest struct {
	TokenType string     `json:"tokenType"`
	Name      string     `json:"name"`
	UserID    *int64     `json:"userId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Create mints a new opaque token. The key is returned once, in this
// response, and is never derivable afterwards.
func (h *TokenHandler) Create(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.TokenType == "" {
		req.TokenType = model.TokenTypeUser
	}
	if !model.ValidTokenType(req.TokenType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token type"})
		return
	}
	if req.TokenType == model.TokenTypeUser && req.UserID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user tokens require a userId"})
		return
	}
	if req.UserID != nil {
		var user model.User
		if err := h.db.First(&user, *req.UserID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
	}

	key, err := auth.GenerateKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token key"})
		return
	}

	token := model.Token{
		Key:       key,
		UserID:    req.UserID,
		TokenType: req.TokenType,
		Name:      req.Name,
		ExpiresAt: req.ExpiresAt,
		IsActive:  true,
	}
	if err := h.db.Create(&token).Error; err != nil {
		saveError(c, err, "conflicting token")
		return
	}

	c.JSON(http.StatusCreated, token)
}

func (h *TokenHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)

	query := h.db.Model(&model.Token{})
	if userID := c.Query("userId"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if tokenType := c.Query("tokenType"); tokenType != "" {
		query = query.Where("token_type = ?", tokenType)
	}

	var totalCount int64
	query.Count(&totalCount)

	var tokens []model.Token
	query.Order("id").Offset(offset).Limit(limit).Find(&tokens)

	// Keys are write-only after creation.
	for i := range tokens {
		tokens[i].Key = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       tokens,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
	})
}

func (h *TokenHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var token model.Token
	if err := h.db.First(&token, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	token.Key = ""
	c.JSON(http.StatusOK, token)
}

type UpdateTokenRequest struct {
	Name      *string    `json:"name"`
	IsActive  *bool      `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *TokenHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var token model.Token
	if err := h.db.First(&token, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	var req UpdateTokenRequest
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
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}

	if len(updates) > 0 {
		if err := h.db.Model(&token).Updates(updates).Error; err != nil {
			saveError(c, err, "conflicting token update")
			return
		}
	}

	h.db.First(&token, id)
	token.Key = ""
	c.JSON(http.StatusOK, token)
}

func (h *TokenHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&model.Token{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
