package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raidledger/api/internal/model"
	"gorm.io/gorm"
)

const (
	// SessionCookie is the http-only cookie set at login.
	SessionCookie = "session_id"

	contextUserKey = "currentUser"
)

// resolveUser authenticates the request from either a bearer token or the
// session cookie, a single resolution path for both credential kinds. It
// returns the associated user (nil for system/api tokens) and whether the
// request may proceed; on failure it has already written a 401.
func resolveUser(c *gin.Context, db *gorm.DB) (*model.User, bool) {
	if key, ok := bearerKey(c); ok {
		var token model.Token
		if err := db.Where("key = ?", key).First(&token).Error; err != nil || !token.IsValid() {
			abortUnauthorized(c, "invalid or expired token")
			return nil, false
		}
		if token.UserID == nil {
			return nil, true
		}
		return loadActiveUser(c, db, *token.UserID)
	}

	if sessionID, err := c.Cookie(SessionCookie); err == nil && sessionID != "" {
		var session model.Session
		if err := db.Where("session_id = ?", sessionID).First(&session).Error; err != nil || !session.IsValid() {
			abortUnauthorized(c, "invalid or expired session")
			return nil, false
		}
		return loadActiveUser(c, db, session.UserID)
	}

	abortUnauthorized(c, "authentication required")
	return nil, false
}

func bearerKey(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func loadActiveUser(c *gin.Context, db *gorm.DB, userID int64) (*model.User, bool) {
	var user model.User
	if err := db.First(&user, userID).Error; err != nil || !user.IsActive {
		abortUnauthorized(c, "user inactive or not found")
		return nil, false
	}
	return &user, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}

// RequireAuth accepts any valid credential, including user-less system and
// api tokens.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, db)
		if !ok {
			return
		}
		if user != nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// RequireUser additionally demands that the credential resolves to a real
// user account.
func RequireUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, db)
		if !ok {
			return
		}
		if user == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "user account required"})
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireSuperuser demands a user credential with the superuser flag.
func RequireSuperuser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, db)
		if !ok {
			return
		}
		if user == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "user account required"})
			c.Abort()
			return
		}
		if !user.IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "superuser access required"})
			c.Abort()
			return
		}
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by the middleware, or nil
// for user-less credentials.
func CurrentUser(c *gin.Context) *model.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*model.User)
	return user
}
