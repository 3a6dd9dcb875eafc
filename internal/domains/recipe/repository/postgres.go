package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/pkg/database"
	"recipe-backend/pkg/idgen"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	recipeNameIndex = "idx_recipes_name_lower"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresRecipeRepository struct {
	pool  database.Querier
	newID idgen.Generator
}

// NewPostgresRecipeRepository builds the repository. A nil gen falls back to
// 21-character NanoIDs.
func NewPostgresRecipeRepository(pool database.Querier, gen idgen.Generator) RecipeRepository {
	if gen == nil {
		gen = idgen.NanoID(idgen.DefaultLength)
	}
	return &postgresRecipeRepository{pool: pool, newID: gen}
}

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresRecipeRepository) GetByID(ctx context.Context, id string) (*model.RecipeDetail, error) {
	return r.GetByIDWithTx(ctx, r.pool, id)
}

func (r *postgresRecipeRepository) GetByIDWithTx(ctx context.Context, tx database.Querier, id string) (*model.RecipeDetail, error) {
	query := `
		SELECT recipe_id, recipe_name, created_at
		FROM recipes
		WHERE recipe_id = $1
	`

	var recipe model.Recipe
	err := tx.QueryRow(ctx, query, id).Scan(&recipe.ID, &recipe.Name, &recipe.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	steps, err := r.listSteps(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	lines, err := r.listIngredientLines(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return model.AssembleRecipe(recipe, steps, lines), nil
}

func (r *postgresRecipeRepository) listSteps(ctx context.Context, tx database.Querier, recipeID string) ([]model.Step, error) {
	query := `
		SELECT step_id, step_number, step_instructions
		FROM steps
		WHERE recipe_id = $1
		ORDER BY step_number
	`

	rows, err := tx.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	steps := make([]model.Step, 0)
	for rows.Next() {
		step := model.Step{RecipeID: recipeID}
		if err := rows.Scan(&step.ID, &step.Number, &step.Instructions); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return steps, nil
}

func (r *postgresRecipeRepository) listIngredientLines(ctx context.Context, tx database.Querier, recipeID string) ([]model.IngredientLine, error) {
	query := `
		SELECT si.step_id, i.ing_id, i.ingr_name, si.quantity::text, i.unit
		FROM step_ingredients si
		JOIN steps s ON s.step_id = si.step_id
		JOIN ingredients i ON i.ing_id = si.ing_id
		WHERE s.recipe_id = $1
		ORDER BY s.step_number, i.ing_id
	`

	rows, err := tx.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query step ingredients: %w", err)
	}
	defer rows.Close()

	var lines []model.IngredientLine
	for rows.Next() {
		var (
			line     model.IngredientLine
			quantity string
		)
		if err := rows.Scan(&line.StepID, &line.ID, &line.Name, &quantity, &line.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan step ingredient: %w", err)
		}

		line.Quantity, err = decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q: %w", quantity, err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return lines, nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresRecipeRepository) List(ctx context.Context, page model.PageRequest) ([]model.Recipe, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := `
		SELECT recipe_id, recipe_name, created_at
		FROM recipes
		ORDER BY created_at, recipe_id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]model.Recipe, 0, page.PageSize)
	for rows.Next() {
		var recipe model.Recipe
		if err := rows.Scan(&recipe.ID, &recipe.Name, &recipe.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return recipes, total, nil
}

func (r *postgresRecipeRepository) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `SELECT ing_id, ingr_name, unit FROM ingredients ORDER BY ing_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]model.Ingredient, 0)
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ingredients, nil
}

// =====================================================
// NAME GUARD
// =====================================================

func (r *postgresRecipeRepository) NameExists(ctx context.Context, name string) (bool, error) {
	return r.NameExistsWithTx(ctx, r.pool, name)
}

func (r *postgresRecipeRepository) NameExistsWithTx(ctx context.Context, tx database.Querier, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM recipes WHERE LOWER(recipe_name) = LOWER($1))`

	var exists bool
	if err := tx.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recipe name: %w", err)
	}
	return exists, nil
}

func (r *postgresRecipeRepository) NameTakenByOtherWithTx(ctx context.Context, tx database.Querier, name, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM recipes
			WHERE LOWER(recipe_name) = LOWER($1) AND recipe_id <> $2
		)
	`

	var exists bool
	if err := tx.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recipe name: %w", err)
	}
	return exists, nil
}

// =====================================================
// RECIPE ROW WRITES
// =====================================================

func (r *postgresRecipeRepository) GenerateUniqueID(ctx context.Context, tx database.Querier) (string, error) {
	return idgen.Unique(ctx, r.newID, func(ctx context.Context, id string) (bool, error) {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE recipe_id = $1)`, id).Scan(&exists)
		return exists, err
	})
}

func (r *postgresRecipeRepository) InsertRecipeWithTx(ctx context.Context, tx database.Querier, id, name string) error {
	_, err := tx.Exec(ctx, `INSERT INTO recipes (recipe_id, recipe_name) VALUES ($1, $2)`, id, name)
	if err != nil {
		return mapWriteError(err, name)
	}
	return nil
}

func (r *postgresRecipeRepository) LockRecipeWithTx(ctx context.Context, tx database.Querier, id string) (bool, error) {
	var locked string
	err := tx.QueryRow(ctx, `SELECT recipe_id FROM recipes WHERE recipe_id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock recipe: %w", err)
	}
	return true, nil
}

func (r *postgresRecipeRepository) UpdateRecipeNameWithTx(ctx context.Context, tx database.Querier, id, name string) (bool, error) {
	tag, err := tx.Exec(ctx, `UPDATE recipes SET recipe_name = $2 WHERE recipe_id = $1`, id, name)
	if err != nil {
		return false, mapWriteError(err, name)
	}
	return tag.RowsAffected() > 0, nil
}

// =====================================================
// STEP WRITES
// =====================================================

func (r *postgresRecipeRepository) ListStepRefsWithTx(ctx context.Context, tx database.Querier, recipeID string) ([]model.StepRef, error) {
	query := `
		SELECT step_id, step_number
		FROM steps
		WHERE recipe_id = $1
		ORDER BY step_number
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock steps: %w", err)
	}
	defer rows.Close()

	var refs []model.StepRef
	for rows.Next() {
		var ref model.StepRef
		if err := rows.Scan(&ref.ID, &ref.Number); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return refs, nil
}

func (r *postgresRecipeRepository) InsertStepWithTx(ctx context.Context, tx database.Querier, recipeID string, step model.StepInput) (int64, error) {
	query := `
		INSERT INTO steps (recipe_id, step_number, step_instructions)
		VALUES ($1, $2, $3)
		RETURNING step_id
	`

	var stepID int64
	if err := tx.QueryRow(ctx, query, recipeID, step.StepNumber, step.Instructions).Scan(&stepID); err != nil {
		return 0, fmt.Errorf("failed to insert step %d: %w", step.StepNumber, err)
	}
	return stepID, nil
}

func (r *postgresRecipeRepository) UpdateStepWithTx(ctx context.Context, tx database.Querier, recipeID string, stepID int64, step model.StepInput) error {
	query := `
		UPDATE steps
		SET step_number = $3, step_instructions = $4
		WHERE step_id = $1 AND recipe_id = $2
	`

	tag, err := tx.Exec(ctx, query, stepID, recipeID, step.StepNumber, step.Instructions)
	if err != nil {
		return fmt.Errorf("failed to update step %d: %w", stepID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("step %d vanished during update", stepID)
	}
	return nil
}

func (r *postgresRecipeRepository) ReplaceStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM step_ingredients WHERE step_id = $1`, stepID); err != nil {
		return fmt.Errorf("failed to clear ingredients of step %d: %w", stepID, err)
	}
	return r.InsertStepIngredientsWithTx(ctx, tx, stepID, lines)
}

func (r *postgresRecipeRepository) InsertStepIngredientsWithTx(ctx context.Context, tx database.Querier, stepID int64, lines []model.IngredientInput) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]int64, len(lines))
	quantities := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.IngredientID
		quantities[i] = line.Quantity.String()
	}

	query := `
		INSERT INTO step_ingredients (step_id, ing_id, quantity)
		SELECT $1, x.ing_id, x.quantity::numeric
		FROM unnest($2::bigint[], $3::text[]) AS x(ing_id, quantity)
	`

	if _, err := tx.Exec(ctx, query, stepID, pq.Array(ids), pq.Array(quantities)); err != nil {
		return mapWriteError(err, "")
	}
	return nil
}

func (r *postgresRecipeRepository) DeleteStepsWithTx(ctx context.Context, tx database.Querier, stepIDs []int64) error {
	if len(stepIDs) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM step_ingredients WHERE step_id = ANY($1)`, pq.Array(stepIDs)); err != nil {
		return fmt.Errorf("failed to delete step ingredients: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM steps WHERE step_id = ANY($1)`, pq.Array(stepIDs)); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	return nil
}

// =====================================================
// DELETE (CASCADE)
// =====================================================

// DeleteWithTx removes children before the parent so the cascade does not
// depend on ON DELETE CASCADE being present in the schema.
func (r *postgresRecipeRepository) DeleteWithTx(ctx context.Context, tx database.Querier, id string) (bool, error) {
	query := `
		DELETE FROM step_ingredients
		WHERE step_id IN (SELECT step_id FROM steps WHERE recipe_id = $1)
	`
	if _, err := tx.Exec(ctx, query, id); err != nil {
		return false, fmt.Errorf("failed to delete step ingredients: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM steps WHERE recipe_id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete steps: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM recipes WHERE recipe_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// =====================================================
// ERROR MAPPING
// =====================================================

// mapWriteError translates constraint violations into domain errors
func mapWriteError(err error, name string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == recipeNameIndex:
			return model.NewDuplicateNameError(name)
		case pgErr.Code == pgForeignKeyViolation:
			return model.NewIngredientNotFoundError(missingIngredientMessage(pgErr.Detail))
		}
	}
	return fmt.Errorf("database write failed: %w", err)
}

// Key (ing_id)=(99) is not present in table "ingredients".
var fkDetailPattern = regexp.MustCompile(`\(ing_id\)=\((\d+)\)`)

func missingIngredientMessage(detail string) string {
	if m := fkDetailPattern.FindStringSubmatch(detail); m != nil {
		return fmt.Sprintf("ingredient %s does not exist", m[1])
	}
	return "referenced ingredient does not exist"
}
