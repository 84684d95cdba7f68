package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// parseID reads a numeric path parameter, answering 400 on garbage.
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// saveError maps a write failure to a response: unique violations become a
// conflict, anything else a 500. The database constraint is the sole
// uniqueness enforcement; there is no pre-insert check to race against.
func saveError(c *gin.Context, err error, conflictMessage string) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": conflictMessage})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
}

// pagination reads page/limit query params, clamped to sane bounds.
func pagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}
