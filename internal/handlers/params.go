package handlers

import (
	"strconv"

	"github.com/feed-system/social-api/internal/models"
	"github.com/gin-gonic/gin"
)

// pagination reads limit and offset. A missing, malformed or non-positive
// limit becomes the default; a malformed or negative offset becomes zero.
func pagination(c *gin.Context) (offset, limit int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = models.DefaultPageLimit
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return offset, limit
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
