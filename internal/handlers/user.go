package handlers

import (
	"net/http"

	"github.com/feed-system/social-api/internal/services"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pagination(c)
	page, err := h.userService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Follow(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.userService.Follow(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User followed successfully"})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.userService.Unfollow(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unfollowed successfully"})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)
	page, err := h.userService.Followers(c.Request.Context(), id, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)
	page, err := h.userService.Following(c.Request.Context(), id, offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetActivity(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)
	page, err := h.userService.Activity(c.Request.Context(), id, services.ActivityQuery{
		Type:      c.Query("type"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Sort:      c.Query("sort"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) userID(c *gin.Context) (uint, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID"})
	}
	return id, ok
}
