package handlers

import (
	"net/http"
	"time"

	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/internal/middleware"
	"github.com/feed-system/social-api/internal/services"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AuthService *services.AuthService
	UserService *services.UserService
	PostService *services.PostService
	LikeService *services.LikeService
	FeedService *services.FeedService

	Tokens      *auth.TokenManager
	Revocations *auth.RevocationStore
	Logger      *logger.Logger

	// AuthRateLimit throttles /auth in requests per second; 0 disables it.
	AuthRateLimit float64
	AuthRateBurst int

	// Metrics and Gatherer are optional; /metrics is mounted only when both are set.
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Handler())
	}
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	if cfg.Metrics != nil && cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authenticated := middleware.Authenticate(cfg.Tokens, cfg.Revocations, cfg.Logger)

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	authRoutes := router.Group("/auth", middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.DELETE("/", authenticated, authHandler.DeleteAccount)
	}

	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	users := router.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/:id/followers", userHandler.GetFollowers)
		users.GET("/:id/following", userHandler.GetFollowing)
		users.GET("/:id/activity", userHandler.GetActivity)
		users.POST("/follow/:id", authenticated, userHandler.Follow)
		users.POST("/unfollow/:id", authenticated, userHandler.Unfollow)
	}

	postHandler := NewPostHandler(cfg.PostService, cfg.LikeService, cfg.Logger)
	posts := router.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/search/:id", postHandler.GetPost)
		posts.GET("/hashtag/:tag", postHandler.GetPostsByHashtag)
		posts.POST("", authenticated, postHandler.CreatePost)
		posts.PUT("/:id", authenticated, postHandler.UpdatePost)
		posts.DELETE("/:id", authenticated, postHandler.DeletePost)
		posts.POST("/like/:id", authenticated, postHandler.LikePost)
		posts.POST("/unlike/:id", authenticated, postHandler.UnlikePost)
	}

	feedHandler := NewFeedHandler(cfg.FeedService, cfg.Logger)
	router.GET("/feed/:id", authenticated, feedHandler.GetFeed)

	return router
}
