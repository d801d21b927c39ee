package handlers

import (
	"net/http"

	"github.com/feed-system/social-api/internal/services"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService *services.FeedService
	logger      *logger.Logger
}

func NewFeedHandler(feedService *services.FeedService, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		logger:      logger,
	}
}

// GetFeed serves the feed of the user named in the path. A path id that is
// not a positive integer is treated as an unauthenticated request.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	page, err := h.feedService.GetFeed(c.Request.Context(), id, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
