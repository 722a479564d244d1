package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blogplatform-backend/internal/shared/middleware"
	"blogplatform-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupPostRoutes(v1, c)
		setupAIRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.AccountHandler.Register)
		auth.POST("/verify", c.AccountHandler.VerifyEmail)
		auth.POST("/resend", c.AccountHandler.ResendOTP)
		auth.POST("/login", c.AccountHandler.Login)
		auth.POST("/refresh", c.AccountHandler.Refresh)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager), c.AccountHandler.Logout)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.AccountHandler.GetMe)
		users.PUT("/me", c.AccountHandler.UpdateMe)
		users.DELETE("/me", c.AccountHandler.DeleteMe)
	}
}

// ========================================
// POST ROUTES
// ========================================
func setupPostRoutes(v1 *gin.RouterGroup, c *container.Container) {
	// Public reads. OptionalAuth lets an author (or admin) see their own
	// drafts through the same endpoint; anonymous callers only see
	// published posts.
	posts := v1.Group("/posts")
	posts.Use(middleware.OptionalAuth(c.JWTManager))
	{
		posts.GET("", c.PostHandler.ListPublished)
		posts.GET("/:id", c.PostHandler.Get)
	}

	// Authenticated writes
	authedPosts := v1.Group("/posts")
	authedPosts.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		authedPosts.POST("", c.PostHandler.Create)
		authedPosts.GET("/me", c.PostHandler.ListMine)
		authedPosts.PUT("/:id", c.PostHandler.Update)
		authedPosts.DELETE("/:id", c.PostHandler.Delete)
		authedPosts.POST("/:id/publish", c.PostHandler.Publish)
		authedPosts.POST("/:id/unpublish", c.PostHandler.Unpublish)
		authedPosts.POST("/:id/cover", c.PostHandler.UploadCover)
	}
}

// ========================================
// AI SUGGESTION ROUTES
// ========================================
func setupAIRoutes(v1 *gin.RouterGroup, c *container.Container) {
	ai := v1.Group("/ai")
	ai.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		ai.POST("/headlines", c.AIHandler.SuggestHeadlines)
		ai.POST("/keywords", c.AIHandler.SuggestKeywords)
		ai.POST("/summary", c.AIHandler.SuggestSummary)
		ai.POST("/improve", c.AIHandler.ImproveContent)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		admin.GET("/users", c.AccountHandler.ListUsers)
		admin.POST("/users", c.AccountHandler.CreateUser)
		admin.PUT("/users/:id", c.AccountHandler.UpdateUser)
		admin.DELETE("/users/:id", c.AccountHandler.DeleteUser)
		admin.GET("/posts", c.PostHandler.ListAll)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
