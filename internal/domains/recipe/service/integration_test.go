//go:build integration

package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"recipe-backend/internal/domains/recipe/handler"
	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/internal/domains/recipe/repository"
	"recipe-backend/internal/domains/recipe/service"
	"recipe-backend/internal/infrastructure/database/migrations"
	"recipe-backend/pkg/database"
)

// startPostgres chạy Postgres trong container, áp dụng migration và seed.
// Mỗi test có database riêng.
func startPostgres(t *testing.T) (*pgxpool.Pool, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("recipes_test"),
		postgres.WithUsername("recipes"),
		postgres.WithPassword("secret"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migrations.NewMigrator(sqlDB)
	require.NoError(t, err)
	_, err = migrator.Up(ctx)
	require.NoError(t, err)
	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	seed, err := migrations.DefaultSeed()
	require.NoError(t, err)
	_, err = migrations.Seed(ctx, sqlDB, seed, nil)
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool, sqlDB
}

func newService(pool *pgxpool.Pool) service.ServiceInterface {
	repo := repository.NewPostgresRecipeRepository(pool, nil)
	return service.NewRecipeService(repo, database.NewTransactor(pool))
}

func ingredientIDs(t *testing.T, svc service.ServiceInterface) map[string]int64 {
	t.Helper()
	ingredients, err := svc.ListIngredients(context.Background())
	require.NoError(t, err)

	ids := make(map[string]int64, len(ingredients))
	for _, ing := range ingredients {
		ids[ing.Name] = ing.ID
	}
	return ids
}

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestIntegration_Recipes(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	pool, sqlDB := startPostgres(t)
	svc := newService(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ids := ingredientIDs(t, svc)
	require.Len(t, ids, 6)

	t.Run("seed is idempotent", func(t *testing.T) {
		seed, err := migrations.DefaultSeed()
		require.NoError(t, err)

		result, err := migrations.Seed(ctx, sqlDB, seed, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.IngredientsInserted)
		assert.Equal(t, 0, result.RecipesInserted)
		assert.Equal(t, 1, result.RecipesSkipped)
	})

	t.Run("create then read is stable", func(t *testing.T) {
		created, err := svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "  Cacio e Pepe  ",
			Steps: []model.StepInput{
				{StepNumber: 3, Instructions: "Toss pasta with cheese and pepper."},
				{StepNumber: 1, Instructions: "Boil water in a large pot.", Ingredients: []model.IngredientInput{
					{IngredientID: ids["Salt"], Quantity: qty(10)},
				}},
				{StepNumber: 2, Instructions: "Cook the spaghetti until al dente.", Ingredients: []model.IngredientInput{
					{IngredientID: ids["Spaghetti"], Quantity: qty(400)},
				}},
			},
		})
		require.NoError(t, err)
		assert.Len(t, created.ID, 21)
		assert.Equal(t, "Cacio e Pepe", created.Name)

		require.Len(t, created.Steps, 3)
		for i, step := range created.Steps {
			assert.Equal(t, i+1, step.Number)
		}
		assert.Empty(t, created.Steps[2].Ingredients)

		first, err := svc.GetRecipe(ctx, created.ID)
		require.NoError(t, err)
		second, err := svc.GetRecipe(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, created.Steps, first.Steps)
	})

	t.Run("POST through the router", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		handler.NewRecipeHandler(svc).RegisterRoutes(router.Group("/api/recipes"))

		body := `{"recipe_name":"Carbonara","steps":[{"step_number":1,"step_instructions":"Boil water for the pasta."}]}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			CreatedRecipe struct {
				Steps []map[string]json.RawMessage `json:"steps"`
			} `json:"createdRecipe"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.CreatedRecipe.Steps, 1)
		assert.NotContains(t, resp.CreatedRecipe.Steps[0], "ingredients")
	})

	t.Run("case variant name is a duplicate", func(t *testing.T) {
		_, err := svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "SPAGHETTI carbonara",
			Steps:      []model.StepInput{{StepNumber: 1, Instructions: "Boil water in a large pot."}},
		})
		assert.ErrorIs(t, err, model.ErrDuplicateName)

		exists, err := svc.NameExists(ctx, "spaghetti CARBONARA")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown ingredient rolls back", func(t *testing.T) {
		page, err := svc.ListRecipes(ctx, model.NewPageRequest(1, 100))
		require.NoError(t, err)

		_, err = svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "Ghost Soup",
			Steps: []model.StepInput{{StepNumber: 1, Instructions: "Stir the invisible broth.", Ingredients: []model.IngredientInput{
				{IngredientID: 9999, Quantity: qty(1)},
			}}},
		})
		assert.ErrorIs(t, err, model.ErrIngredientNotFound)

		after, err := svc.ListRecipes(ctx, model.NewPageRequest(1, 100))
		require.NoError(t, err)
		assert.Equal(t, page.Total, after.Total)
	})

	t.Run("update reconciles steps", func(t *testing.T) {
		created, err := svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "Garlic Bread",
			Steps: []model.StepInput{
				{StepNumber: 1, Instructions: "Slice the bread loaf."},
				{StepNumber: 2, Instructions: "Spread butter and bake.", Ingredients: []model.IngredientInput{
					{IngredientID: ids["Salt"], Quantity: qty(2)},
				}},
			},
		})
		require.NoError(t, err)
		keptID := created.Steps[0].ID

		updated, err := svc.UpdateRecipe(ctx, created.ID, model.RecipeRequest{
			RecipeName: "Garlic Bread",
			Steps:      []model.StepInput{{StepNumber: 1, Instructions: "Slice the bread loaf thinly."}},
		})
		require.NoError(t, err)
		require.Len(t, updated.Steps, 1)
		assert.Equal(t, keptID, updated.Steps[0].ID)
		assert.Equal(t, "Slice the bread loaf thinly.", updated.Steps[0].Instructions)

		var orphans int
		require.NoError(t, sqlDB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM step_ingredients WHERE step_id = $1`, created.Steps[1].ID).Scan(&orphans))
		assert.Zero(t, orphans)
	})

	t.Run("steps can swap numbers", func(t *testing.T) {
		created, err := svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "Boiled Eggs",
			Steps: []model.StepInput{
				{StepNumber: 1, Instructions: "Boil water in a small pot."},
				{StepNumber: 2, Instructions: "Lower the eggs into the water."},
			},
		})
		require.NoError(t, err)
		a, b := created.Steps[0], created.Steps[1]

		updated, err := svc.UpdateRecipe(ctx, created.ID, model.RecipeRequest{
			RecipeName: "Boiled Eggs",
			Steps: []model.StepInput{
				{StepID: a.ID, StepNumber: 2, Instructions: a.Instructions},
				{StepID: b.ID, StepNumber: 1, Instructions: b.Instructions},
			},
		})
		require.NoError(t, err)
		require.Len(t, updated.Steps, 2)
		assert.Equal(t, b.ID, updated.Steps[0].ID)
		assert.Equal(t, a.ID, updated.Steps[1].ID)
	})

	t.Run("rename to another recipe's name conflicts", func(t *testing.T) {
		created, err := svc.CreateRecipe(ctx, model.RecipeRequest{
			RecipeName: "Plain Rice",
			Steps:      []model.StepInput{{StepNumber: 1, Instructions: "Rinse and cook the rice."}},
		})
		require.NoError(t, err)

		_, err = svc.UpdateRecipe(ctx, created.ID, model.RecipeRequest{
			RecipeName: "garlic bread",
			Steps:      []model.StepInput{{StepNumber: 1, Instructions: "Rinse and cook the rice."}},
		})
		assert.ErrorIs(t, err, model.ErrDuplicateName)

		_, err = svc.UpdateRecipe(ctx, "does-not-exist-000000", model.RecipeRequest{
			RecipeName: "garlic bread",
			Steps:      []model.StepInput{{StepNumber: 1, Instructions: "Rinse and cook the rice."}},
		})
		assert.ErrorIs(t, err, model.ErrRecipeNotFound)
	})

	t.Run("delete cascades", func(t *testing.T) {
		page, err := svc.ListRecipes(ctx, model.NewPageRequest(1, 100))
		require.NoError(t, err)

		var carbonaraID string
		for _, r := range page.Recipes {
			if r.Name == "Spaghetti Carbonara" {
				carbonaraID = r.ID
			}
		}
		require.NotEmpty(t, carbonaraID)

		require.NoError(t, svc.DeleteRecipe(ctx, carbonaraID))
		assert.ErrorIs(t, svc.DeleteRecipe(ctx, carbonaraID), model.ErrRecipeNotFound)

		var steps int
		require.NoError(t, sqlDB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM steps WHERE recipe_id = $1`, carbonaraID).Scan(&steps))
		assert.Zero(t, steps)

		_, err = svc.GetRecipe(ctx, carbonaraID)
		assert.ErrorIs(t, err, model.ErrRecipeNotFound)
	})

	t.Run("pagination windows the list", func(t *testing.T) {
		all, err := svc.ListRecipes(ctx, model.NewPageRequest(1, 100))
		require.NoError(t, err)
		require.GreaterOrEqual(t, all.Total, 3)

		second, err := svc.ListRecipes(ctx, model.NewPageRequest(2, 2))
		require.NoError(t, err)
		assert.Equal(t, all.Total, second.Total)
		require.NotEmpty(t, second.Recipes)
		assert.Equal(t, all.Recipes[2].ID, second.Recipes[0].ID)
	})
}
