package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/auth"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	InviteCode string `json:"inviteCode" binding:"required"`
}

// Register creates a user from a usable invite code. The invite is consumed
// inside the same transaction as the user insert.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and inviteCode are required"})
		return
	}

	var invite model.Invite
	if err := h.db.Where("code = ?", req.InviteCode).First(&invite).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite code"})
		return
	}
	if !invite.IsUsable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invite code already used or expired"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := model.User{
		Username:       req.Username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    invite.IsSuperuserInvite,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&invite).Updates(map[string]interface{}{
			"used_by_id": user.ID,
			"used_at":    now,
			"is_active":  false,
		}).Error
	})
	if err != nil {
		saveError(c, err, "username already taken")
		return
	}

	c.JSON(http.StatusCreated, user)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and opens a session, returned both as an
// http-only cookie and in the response body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var user model.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if !user.IsActive || !auth.CheckPassword(req.Password, user.HashedPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	session := model.Session{
		SessionID: auth.NewSessionID(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(auth.SessionExpiry),
		IsActive:  true,
	}
	if err := h.db.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.SetCookie(middleware.SessionCookie, session.SessionID, int(auth.SessionExpiry.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.SessionID,
		"expiresAt": session.ExpiresAt,
		"user":      user,
	})
}

// Logout deactivates the session server-side and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(middleware.SessionCookie); err == nil && sessionID != "" {
		h.db.Model(&model.Session{}).Where("session_id = ?", sessionID).Update("is_active", false)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "user account required"})
		return
	}
	c.JSON(http.StatusOK, user)
}
