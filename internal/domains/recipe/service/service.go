package service

import (
	"context"
	"fmt"
	"strings"

	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/internal/domains/recipe/repository"
	"recipe-backend/pkg/database"
	"recipe-backend/pkg/logger"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type recipeService struct {
	recipeRepo repository.RecipeRepository
	tx         database.Transactor
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	tx database.Transactor,
) ServiceInterface {
	return &recipeService{
		recipeRepo: recipeRepo,
		tx:         tx,
	}
}

// =====================================================
// GET RECIPE
// =====================================================

func (s *recipeService) GetRecipe(ctx context.Context, id string) (*model.RecipeDetail, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe == nil {
		return nil, model.ErrRecipeNotFound
	}
	return recipe, nil
}

// =====================================================
// LIST RECIPES
// =====================================================

func (s *recipeService) ListRecipes(ctx context.Context, page model.PageRequest) (*model.RecipePage, error) {
	// Re-normalize: callers may build PageRequest by hand
	page = model.NewPageRequest(page.Page, page.PageSize)

	recipes, total, err := s.recipeRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return &model.RecipePage{
		Recipes:  recipes,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *recipeService) NameExists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, model.NewValidationError("No name provided")
	}

	exists, err := s.recipeRepo.NameExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check recipe name: %w", err)
	}
	return exists, nil
}

func (s *recipeService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	ingredients, err := s.recipeRepo.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// =====================================================
// CREATE RECIPE
// =====================================================

func (s *recipeService) CreateRecipe(ctx context.Context, req model.RecipeRequest) (*model.RecipeDetail, error) {
	// Step 1: Validate request
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.RecipeDetail
	err := s.tx.InTx(ctx, func(tx database.Querier) error {
		// Step 2: Name guard
		taken, err := s.recipeRepo.NameExistsWithTx(ctx, tx, req.RecipeName)
		if err != nil {
			return err
		}
		if taken {
			return model.NewDuplicateNameError(req.RecipeName)
		}

		// Step 3: Allocate id
		id, err := s.recipeRepo.GenerateUniqueID(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to generate recipe id: %w", err)
		}

		// Step 4: Insert recipe, steps, lines
		if err := s.recipeRepo.InsertRecipeWithTx(ctx, tx, id, req.RecipeName); err != nil {
			return err
		}
		for _, step := range req.Steps {
			stepID, err := s.recipeRepo.InsertStepWithTx(ctx, tx, id, step)
			if err != nil {
				return err
			}
			if err := s.recipeRepo.InsertStepIngredientsWithTx(ctx, tx, stepID, step.Ingredients); err != nil {
				return err
			}
		}

		// Step 5: Read back the aggregate as committed
		created, err = s.recipeRepo.GetByIDWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if created == nil {
			return fmt.Errorf("recipe %s missing after insert", id)
		}
		return nil
	})
	if err != nil {
		logFailure("create recipe failed", err)
		return nil, err
	}

	logger.Info("recipe created", map[string]interface{}{
		"recipe_id": created.ID,
		"steps":     len(created.Steps),
	})
	return created, nil
}

// =====================================================
// UPDATE RECIPE
// =====================================================

func (s *recipeService) UpdateRecipe(ctx context.Context, id string, req model.RecipeRequest) (*model.RecipeDetail, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *model.RecipeDetail
	err := s.tx.InTx(ctx, func(tx database.Querier) error {
		// Step 1: Recipe must exist; the row lock serializes concurrent updates
		found, err := s.recipeRepo.LockRecipeWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			return model.ErrRecipeNotFound
		}

		// Step 2: Name guard, excluding this recipe
		taken, err := s.recipeRepo.NameTakenByOtherWithTx(ctx, tx, req.RecipeName, id)
		if err != nil {
			return err
		}
		if taken {
			return model.NewDuplicateNameError(req.RecipeName)
		}

		if _, err := s.recipeRepo.UpdateRecipeNameWithTx(ctx, tx, id, req.RecipeName); err != nil {
			return err
		}

		// Step 3: Reconcile steps
		current, err := s.recipeRepo.ListStepRefsWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		plan := model.Reconcile(current, req.Steps)

		if err := s.recipeRepo.DeleteStepsWithTx(ctx, tx, plan.Deletes); err != nil {
			return err
		}

		for _, u := range plan.Upserts {
			if u.IsInsert() {
				stepID, err := s.recipeRepo.InsertStepWithTx(ctx, tx, id, u.Step)
				if err != nil {
					return err
				}
				if err := s.recipeRepo.InsertStepIngredientsWithTx(ctx, tx, stepID, u.Step.Ingredients); err != nil {
					return err
				}
				continue
			}

			if err := s.recipeRepo.UpdateStepWithTx(ctx, tx, id, u.StepID, u.Step); err != nil {
				return err
			}
			if err := s.recipeRepo.ReplaceStepIngredientsWithTx(ctx, tx, u.StepID, u.Step.Ingredients); err != nil {
				return err
			}
		}

		// Step 4: Read back
		updated, err = s.recipeRepo.GetByIDWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return model.ErrRecipeNotFound
		}
		return nil
	})
	if err != nil {
		logFailure("update recipe failed", err)
		return nil, err
	}

	logger.Info("recipe updated", map[string]interface{}{
		"recipe_id": id,
		"steps":     len(updated.Steps),
	})
	return updated, nil
}

// =====================================================
// DELETE RECIPE
// =====================================================

// DeleteRecipe removes the recipe with its steps and ingredient lines.
// A repository miss (deleted == false) is reported as ErrRecipeNotFound.
func (s *recipeService) DeleteRecipe(ctx context.Context, id string) error {
	err := s.tx.InTx(ctx, func(tx database.Querier) error {
		deleted, err := s.recipeRepo.DeleteWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return model.ErrRecipeNotFound
		}
		return nil
	})
	if err != nil {
		logFailure("delete recipe failed", err)
		return err
	}

	logger.Info("recipe deleted", map[string]interface{}{"recipe_id": id})
	return nil
}

// logFailure logs storage failures only; domain errors are the caller's business
func logFailure(msg string, err error) {
	if model.GetHTTPStatusCode(err) >= 500 {
		logger.Error(msg, err)
	}
}
