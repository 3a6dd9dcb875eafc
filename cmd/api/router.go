package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-backend/internal/config"
	recipeHandler "recipe-backend/internal/domains/recipe/handler"
	"recipe-backend/internal/infrastructure/database"
	"recipe-backend/internal/shared/middleware"
	"recipe-backend/internal/shared/response"
	"recipe-backend/pkg/container"
)

// healthChecker là phần của PostgresDB mà /api/health cần
type healthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() (*database.PoolStats, error)
}

func SetupRouter(c *container.Container) *gin.Engine {
	return newRouter(c.Config, c.DB, c.RecipeHandler)
}

func newRouter(cfg *config.Config, db healthChecker, recipes *recipeHandler.RecipeHandler) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	router.NoRoute(middleware.NotFound())

	// Liveness
	router.GET("/", func(c *gin.Context) {
		response.Message(c, http.StatusOK, "API is alive")
	})

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(cfg, db))

		recipes.RegisterRoutes(api.Group("/recipes"))
	}

	return router
}

// ========================================
// HEALTH CHECK
// ========================================

func healthCheckHandler(cfg *config.Config, db healthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   cfg.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := db.HealthCheck(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			health["status"] = "degraded"
		}
		services := gin.H{"database": dbStatus}
		if stats, err := db.Stats(); err == nil {
			services["pool"] = stats
		}
		health["services"] = services

		status := http.StatusOK
		if health["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
}
