package service

import (
	"context"

	"recipe-backend/internal/domains/recipe/model"
)

// =====================================================
// RECIPE SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// READ
	// ========================================

	// GetRecipe returns the nested recipe or ErrRecipeNotFound
	GetRecipe(ctx context.Context, id string) (*model.RecipeDetail, error)

	// ListRecipes returns one flat page plus the total count
	ListRecipes(ctx context.Context, page model.PageRequest) (*model.RecipePage, error)

	// NameExists is the case-insensitive name check behind check-name
	NameExists(ctx context.Context, name string) (bool, error)

	// ListIngredients returns the ingredient catalog
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)

	// ========================================
	// WRITE (each call is one transaction)
	// ========================================

	CreateRecipe(ctx context.Context, req model.RecipeRequest) (*model.RecipeDetail, error)
	UpdateRecipe(ctx context.Context, id string, req model.RecipeRequest) (*model.RecipeDetail, error)
	DeleteRecipe(ctx context.Context, id string) error
}
