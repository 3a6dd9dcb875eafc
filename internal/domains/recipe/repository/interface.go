package repository

import (
	"context"

	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/pkg/database"
)

// =====================================================
// RECIPE REPOSITORY INTERFACE
// =====================================================
// Methods suffixed WithTx run on the querier they are given, which is the
// open transaction of the calling service operation.
type RecipeRepository interface {
	// ========================================
	// AGGREGATE READER
	// ========================================

	// GetByID returns the nested recipe, or (nil, nil) when it does not exist
	GetByID(ctx context.Context, id string) (*model.RecipeDetail, error)
	GetByIDWithTx(ctx context.Context, tx database.Querier, id string) (*model.RecipeDetail, error)

	// ========================================
	// LIST / CATALOG
	// ========================================

	// List returns one flat page of recipes plus the unfiltered total
	List(ctx context.Context, page model.PageRequest) ([]model.Recipe, int, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)

	// ========================================
	// NAME GUARD
	// ========================================

	// NameExists is a case-insensitive exact match on recipe_name
	NameExists(ctx context.Context, name string) (bool, error)
	NameExistsWithTx(ctx context.Context, tx database.Querier, name string) (bool, error)
	// NameTakenByOtherWithTx ignores the recipe identified by excludeID
	NameTakenByOtherWithTx(ctx context.Context, tx database.Querier, name, excludeID string) (bool, error)

	// ========================================
	// AGGREGATE WRITER
	// ========================================

	// GenerateUniqueID draws recipe ids until one is unused in tx
	GenerateUniqueID(ctx context.Context, tx database.Querier) (string, error)
	InsertRecipeWithTx(ctx context.Context, tx database.Querier, id, name string) error
	// LockRecipeWithTx takes a row lock on the recipe; false when it does not exist
	LockRecipeWithTx(ctx context.Context, tx database.Querier, id string) (bool, error)
	// UpdateRecipeNameWithTx reports false when the recipe does not exist
	UpdateRecipeNameWithTx(ctx context.Context, tx database.Querier, id, name string) (bool, error)

	ListStepRefsWithTx(ctx context.Context, tx database.Querier, recipeID string) ([]model.StepRef, error)
	InsertStepWithTx(ctx context.Context, tx database.Querier, recipeID string, step model.StepInput) (int64, error)
	UpdateStepWithTx(ctx context.Context, tx database.Querier, recipeID string, stepID int64, step model.StepInput) error
	// ReplaceStepIngredientsWithTx deletes every line of the step, then inserts lines
	ReplaceStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error
	InsertStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error
	// DeleteStepsWithTx removes the steps and their ingredient lines
	DeleteStepsWithTx(ctx context.Context, tx database.Querier, stepIDs []int64) error

	// ========================================
	// DELETION CASCADE
	// ========================================

	// DeleteWithTx removes lines, steps and the recipe; false when nothing existed
	DeleteWithTx(ctx context.Context, tx database.Querier, id string) (bool, error)
}
