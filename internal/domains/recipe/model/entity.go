package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Quantities go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// =====================================================
// ROW ENTITIES
// =====================================================
// ┌──────────────┐     ┌──────────────┐     ┌───────────────────┐     ┌──────────────┐
// │   recipes    │ 1─n │    steps     │ 1─n │ step_ingredients  │ n─1 │ ingredients  │
// │ recipe_id PK │     │ step_id PK   │     │ (step_id, ing_id) │     │ ing_id PK    │
// └──────────────┘     └──────────────┘     └───────────────────┘     └──────────────┘

// Recipe is a row of the recipes table; it is also the flat list item
type Recipe struct {
	ID        string    `json:"recipe_id"`
	Name      string    `json:"recipe_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Step is a row of the steps table
type Step struct {
	ID           int64  `json:"step_id"`
	RecipeID     string `json:"-"`
	Number       int    `json:"step_number"`
	Instructions string `json:"step_instructions"`
}

// StepRef is the minimal view of a stored step used for reconciliation
type StepRef struct {
	ID     int64
	Number int
}

// Ingredient is a catalog row, not owned by any recipe
type Ingredient struct {
	ID   int64  `json:"ing_id"`
	Name string `json:"ingr_name"`
	Unit string `json:"unit"`
}

// IngredientLine is one step_ingredients row joined with its catalog entry
type IngredientLine struct {
	StepID   int64
	ID       int64
	Name     string
	Quantity decimal.Decimal
	Unit     string
}

// =====================================================
// AGGREGATE (nested read model)
// =====================================================

// RecipeDetail is the full recipe with ordered steps and their ingredient lines
type RecipeDetail struct {
	Recipe
	Steps []StepDetail `json:"steps"`
}

// StepDetail omits "ingredients" entirely when the step has no lines
type StepDetail struct {
	Step
	Ingredients []StepIngredientDetail `json:"ingredients,omitempty"`
}

type StepIngredientDetail struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
}

// RecipePage is one window of the flat recipe list
type RecipePage struct {
	Recipes  []Recipe `json:"recipes"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}
