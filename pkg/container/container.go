package container

import (
	"context"
	"fmt"
	"time"

	"recipe-backend/internal/config"
	recipeHandler "recipe-backend/internal/domains/recipe/handler"
	recipeRepo "recipe-backend/internal/domains/recipe/repository"
	recipeService "recipe-backend/internal/domains/recipe/service"
	"recipe-backend/internal/infrastructure/database"
	pkgdb "recipe-backend/pkg/database"
	"recipe-backend/pkg/logger"
)

// Container giữ toàn bộ dependencies của application
// Mỗi layer chỉ phụ thuộc layer ngay bên dưới
type Container struct {
	// ========================================
	// CONFIGURATION LAYER
	// ========================================
	Config *config.Config

	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	DB         *database.PostgresDB
	Transactor pkgdb.Transactor

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	RecipeRepo recipeRepo.RecipeRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	RecipeService recipeService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	RecipeHandler *recipeHandler.RecipeHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph
//
// Thứ tự initialization:
// 1. Config
// 2. Infrastructure (DB) - phụ thuộc Config
// 3. Repositories - phụ thuộc DB
// 4. Services - phụ thuộc Repositories
// 5. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	logger.Info("initializing container", nil)

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.Database)

	// Connect tự retry theo DB_MAX_RETRIES; 60s là trần cho toàn bộ các lần thử
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	c.Transactor = pkgdb.NewTransactor(db.Pool)

	// ========================================
	// STEP 3-5: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	// nil generator → NanoID 21 ký tự
	c.RecipeRepo = recipeRepo.NewPostgresRecipeRepository(c.DB.Pool, nil)
}

func (c *Container) initServices() {
	c.RecipeService = recipeService.NewRecipeService(c.RecipeRepo, c.Transactor)
}

func (c *Container) initHandlers() {
	c.RecipeHandler = recipeHandler.NewRecipeHandler(c.RecipeService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup đóng các connection khi shutdown
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}
	logger.Info("container cleaned up", nil)
}
