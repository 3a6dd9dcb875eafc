package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"recipe-backend/pkg/idgen"
	"recipe-backend/pkg/logger"
)

//go:embed seeds.yaml
var seedYAML []byte

// =====================================================
// SEED DATA
// =====================================================

type SeedData struct {
	Ingredients []SeedIngredient `yaml:"ingredients"`
	Recipes     []SeedRecipe     `yaml:"recipes"`
}

type SeedIngredient struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

type SeedRecipe struct {
	Name  string     `yaml:"name"`
	Steps []SeedStep `yaml:"steps"`
}

type SeedStep struct {
	Number       int        `yaml:"number"`
	Instructions string     `yaml:"instructions"`
	Ingredients  []SeedLine `yaml:"ingredients"`
}

// SeedLine tham chiếu ingredient theo tên, không theo ing_id
type SeedLine struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

// SeedResult đếm những gì Seed đã ghi
type SeedResult struct {
	IngredientsInserted int
	RecipesInserted     int
	RecipesSkipped      int
}

// DefaultSeed trả về seed data embed trong binary
func DefaultSeed() (*SeedData, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed decode YAML và kiểm tra các tham chiếu bên trong
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *SeedData) validate() error {
	catalog := make(map[string]bool, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return errors.New("seed ingredient without a name")
		}
		catalog[ing.Name] = true
	}

	for _, recipe := range d.Recipes {
		if strings.TrimSpace(recipe.Name) == "" {
			return errors.New("seed recipe without a name")
		}

		numbers := make(map[int]bool, len(recipe.Steps))
		for _, step := range recipe.Steps {
			if step.Number <= 0 {
				return fmt.Errorf("recipe %q: step number must be positive, got %d", recipe.Name, step.Number)
			}
			if numbers[step.Number] {
				return fmt.Errorf("recipe %q: duplicate step number %d", recipe.Name, step.Number)
			}
			numbers[step.Number] = true

			for _, line := range step.Ingredients {
				if !catalog[line.Name] {
					return fmt.Errorf("recipe %q step %d: unknown ingredient %q", recipe.Name, step.Number, line.Name)
				}
				qty, err := decimal.NewFromString(line.Quantity)
				if err != nil {
					return fmt.Errorf("recipe %q step %d: invalid quantity %q", recipe.Name, step.Number, line.Quantity)
				}
				if !qty.IsPositive() {
					return fmt.Errorf("recipe %q step %d: quantity must be positive", recipe.Name, step.Number)
				}
			}
		}
	}

	return nil
}

// =====================================================
// APPLY
// =====================================================

// Seed ghi seed data trong một transaction. Chạy lại an toàn: ingredient trùng
// tên được dùng lại, recipe trùng tên (không phân biệt hoa thường) bị bỏ qua.
func Seed(ctx context.Context, db *sql.DB, data *SeedData, gen idgen.Generator) (*SeedResult, error) {
	if gen == nil {
		gen = idgen.NanoID(idgen.DefaultLength)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &SeedResult{}

	// Step 1: Ingredient catalog
	ingredientIDs := make(map[string]int64, len(data.Ingredients))
	for _, ing := range data.Ingredients {
		id, inserted, err := ensureIngredient(ctx, tx, ing)
		if err != nil {
			return nil, err
		}
		ingredientIDs[ing.Name] = id
		if inserted {
			result.IngredientsInserted++
		}
	}

	// Step 2: Recipes, steps, lines
	for _, recipe := range data.Recipes {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM recipes WHERE LOWER(recipe_name) = LOWER($1))`,
			recipe.Name).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check recipe %q: %w", recipe.Name, err)
		}
		if exists {
			result.RecipesSkipped++
			continue
		}

		if err := insertSeedRecipe(ctx, tx, recipe, ingredientIDs, gen); err != nil {
			return nil, err
		}
		result.RecipesInserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}

	logger.Info("seed applied", map[string]interface{}{
		"ingredients_inserted": result.IngredientsInserted,
		"recipes_inserted":     result.RecipesInserted,
		"recipes_skipped":      result.RecipesSkipped,
	})
	return result, nil
}

func ensureIngredient(ctx context.Context, tx *sql.Tx, ing SeedIngredient) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT ing_id FROM ingredients WHERE ingr_name = $1 ORDER BY ing_id LIMIT 1`,
		ing.Name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up ingredient %q: %w", ing.Name, err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO ingredients (ingr_name, unit) VALUES ($1, $2) RETURNING ing_id`,
		ing.Name, ing.Unit).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert ingredient %q: %w", ing.Name, err)
	}
	return id, true, nil
}

func insertSeedRecipe(ctx context.Context, tx *sql.Tx, recipe SeedRecipe, ingredientIDs map[string]int64, gen idgen.Generator) error {
	recipeID, err := idgen.Unique(ctx, gen, func(ctx context.Context, id string) (bool, error) {
		var taken bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM recipes WHERE recipe_id = $1)`, id).Scan(&taken)
		return taken, err
	})
	if err != nil {
		return fmt.Errorf("failed to generate id for %q: %w", recipe.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recipes (recipe_id, recipe_name) VALUES ($1, $2)`,
		recipeID, recipe.Name); err != nil {
		return fmt.Errorf("failed to insert recipe %q: %w", recipe.Name, err)
	}

	for _, step := range recipe.Steps {
		var stepID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO steps (recipe_id, step_number, step_instructions) VALUES ($1, $2, $3) RETURNING step_id`,
			recipeID, step.Number, step.Instructions).Scan(&stepID)
		if err != nil {
			return fmt.Errorf("failed to insert step %d of %q: %w", step.Number, recipe.Name, err)
		}

		for _, line := range step.Ingredients {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO step_ingredients (step_id, ing_id, quantity) VALUES ($1, $2, $3::numeric)`,
				stepID, ingredientIDs[line.Name], line.Quantity); err != nil {
				return fmt.Errorf("failed to insert %q for step %d: %w", line.Name, step.Number, err)
			}
		}
	}

	return nil
}
