package handlers

import (
	"net/http"

	"github.com/feed-system/social-api/internal/services"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService *services.PostService
	likeService *services.LikeService
	logger      *logger.Logger
}

func NewPostHandler(postService *services.PostService, likeService *services.LikeService, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		likeService: likeService,
		logger:      logger,
	}
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	offset, limit := pagination(c)
	page, err := h.postService.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	post, err := h.postService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetPostsByHashtag(c *gin.Context) {
	offset, limit := pagination(c)
	page, err := h.postService.ByHashtag(c.Request.Context(), c.Param("tag"), offset, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req services.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}
	var req services.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), principal, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) LikePost(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.likeService.LikePost(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UnlikePost(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.likeService.UnlikePost(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) postID(c *gin.Context) (uint, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post ID"})
	}
	return id, ok
}
