package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/pkg/database"
)

type mockRecipeRepo struct {
	mock.Mock
}

func (m *mockRecipeRepo) GetByID(ctx context.Context, id string) (*model.RecipeDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*model.RecipeDetail)
	return detail, args.Error(1)
}

func (m *mockRecipeRepo) GetByIDWithTx(ctx context.Context, tx database.Querier, id string) (*model.RecipeDetail, error) {
	args := m.Called(ctx, tx, id)
	detail, _ := args.Get(0).(*model.RecipeDetail)
	return detail, args.Error(1)
}

func (m *mockRecipeRepo) List(ctx context.Context, page model.PageRequest) ([]model.Recipe, int, error) {
	args := m.Called(ctx, page)
	recipes, _ := args.Get(0).([]model.Recipe)
	return recipes, args.Int(1), args.Error(2)
}

func (m *mockRecipeRepo) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	args := m.Called(ctx)
	ingredients, _ := args.Get(0).([]model.Ingredient)
	return ingredients, args.Error(1)
}

func (m *mockRecipeRepo) NameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecipeRepo) NameExistsWithTx(ctx context.Context, tx database.Querier, name string) (bool, error) {
	args := m.Called(ctx, tx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecipeRepo) NameTakenByOtherWithTx(ctx context.Context, tx database.Querier, name, excludeID string) (bool, error) {
	args := m.Called(ctx, tx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecipeRepo) GenerateUniqueID(ctx context.Context, tx database.Querier) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

func (m *mockRecipeRepo) InsertRecipeWithTx(ctx context.Context, tx database.Querier, id, name string) error {
	return m.Called(ctx, tx, id, name).Error(0)
}

func (m *mockRecipeRepo) LockRecipeWithTx(ctx context.Context, tx database.Querier, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecipeRepo) UpdateRecipeNameWithTx(ctx context.Context, tx database.Querier, id, name string) (bool, error) {
	args := m.Called(ctx, tx, id, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecipeRepo) ListStepRefsWithTx(ctx context.Context, tx database.Querier, recipeID string) ([]model.StepRef, error) {
	args := m.Called(ctx, tx, recipeID)
	refs, _ := args.Get(0).([]model.StepRef)
	return refs, args.Error(1)
}

func (m *mockRecipeRepo) InsertStepWithTx(ctx context.Context, tx database.Querier, recipeID string, step model.StepInput) (int64, error) {
	args := m.Called(ctx, tx, recipeID, step)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRecipeRepo) UpdateStepWithTx(ctx context.Context, tx database.Querier, recipeID string, stepID int64, step model.StepInput) error {
	return m.Called(ctx, tx, recipeID, stepID, step).Error(0)
}

func (m *mockRecipeRepo) ReplaceStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error {
	return m.Called(ctx, tx, stepID, lines).Error(0)
}

func (m *mockRecipeRepo) InsertStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error {
	return m.Called(ctx, tx, stepID, lines).Error(0)
}

func (m *mockRecipeRepo) DeleteStepsWithTx(ctx context.Context, tx database.Querier, stepIDs []int64) error {
	return m.Called(ctx, tx, stepIDs).Error(0)
}

func (m *mockRecipeRepo) DeleteWithTx(ctx context.Context, tx database.Querier, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// fakeTx runs fn without a database and remembers how the transaction ended
type fakeTx struct {
	committed  int
	rolledBack int
}

func (f *fakeTx) InTx(_ context.Context, fn func(tx database.Querier) error) error {
	if err := fn(nil); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}
