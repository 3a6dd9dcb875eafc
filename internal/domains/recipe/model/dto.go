package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// RecipeRequest is the body of POST /recipes and PUT /recipes/:id.
// It describes the complete desired state of the aggregate.
type RecipeRequest struct {
	RecipeName string      `json:"recipe_name"`
	Steps      []StepInput `json:"steps"`
}

// StepInput is one desired step. StepID is optional and only honoured on update
// when it names a step that already belongs to the recipe.
type StepInput struct {
	StepID       int64             `json:"step_id,omitempty"`
	StepNumber   int               `json:"step_number"`
	Instructions string            `json:"step_instructions"`
	Ingredients  []IngredientInput `json:"ingredients,omitempty"`
}

type IngredientInput struct {
	IngredientID int64           `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Normalize trims the free-text fields. Steps are copied first so the
// caller's slice is left untouched.
func (r *RecipeRequest) Normalize() {
	r.RecipeName = strings.TrimSpace(r.RecipeName)
	if r.Steps == nil {
		return
	}
	steps := make([]StepInput, len(r.Steps))
	copy(steps, r.Steps)
	for i := range steps {
		steps[i].Instructions = strings.TrimSpace(steps[i].Instructions)
	}
	r.Steps = steps
}

// Validate checks the whole payload and reports every violation, not just the first
func (r RecipeRequest) Validate() error {
	errs, err := r.fieldErrors()
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		return nil
	}
	return NewValidationError(FlattenErrors(errs)...)
}

// fieldErrors collects violations keyed like the JSON body.
// An empty steps list passes; only a missing one is rejected.
func (r RecipeRequest) fieldErrors() (validation.Errors, error) {
	errs := validation.Errors{}

	err := validation.ValidateStruct(&r,
		validation.Field(&r.RecipeName,
			validation.Required.Error("recipe name is required"),
			validation.RuneLength(3, 0).Error("recipe name must be at least 3 characters long"),
			validation.RuneLength(0, 100).Error("recipe name must be at most 100 characters long"),
		),
		validation.Field(&r.Steps,
			validation.NotNil.Error("at least one step is required"),
		),
	)
	if err := mergeErrors(errs, err); err != nil {
		return nil, err
	}

	if _, bad := errs["steps"]; !bad {
		seen := make(map[int]bool, len(r.Steps))
		for _, step := range r.Steps {
			if seen[step.StepNumber] {
				errs["steps"] = fmt.Errorf("step number %d is used more than once", step.StepNumber)
				break
			}
			seen[step.StepNumber] = true
		}
	}
	return errs, nil
}

func (s StepInput) Validate() error {
	errs := validation.Errors{}

	err := validation.ValidateStruct(&s,
		validation.Field(&s.StepNumber,
			validation.Required.Error("step number must be a positive integer"),
			validation.Min(1).Error("step number must be a positive integer"),
		),
		validation.Field(&s.Instructions,
			validation.Required.Error("step instructions is required"),
			validation.RuneLength(10, 0).Error("step instructions must be at least 10 characters long"),
			validation.RuneLength(0, 200).Error("step instructions must be at most 200 characters long"),
		),
		validation.Field(&s.Ingredients),
	)
	if err := mergeErrors(errs, err); err != nil {
		return err
	}

	if _, bad := errs["ingredients"]; !bad {
		seen := make(map[int64]bool, len(s.Ingredients))
		for _, ing := range s.Ingredients {
			if seen[ing.IngredientID] {
				errs["ingredients"] = fmt.Errorf("ingredient %d is listed more than once", ing.IngredientID)
				break
			}
			seen[ing.IngredientID] = true
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (i IngredientInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.IngredientID,
			validation.Required.Error("ingredient id must be a positive integer"),
			validation.Min(int64(1)).Error("ingredient id must be a positive integer"),
		),
		validation.Field(&i.Quantity,
			validation.By(positiveDecimal),
		),
	)
}

func positiveDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return errors.New("quantity must be a positive number")
	}
	return nil
}

// mergeErrors copies field errors into dst; anything else (internal errors) is returned
func mergeErrors(dst validation.Errors, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for k, v := range fieldErrs {
		if v != nil {
			dst[k] = v
		}
	}
	return nil
}

// FlattenErrors turns nested ozzo errors into sorted messages. Top-level
// messages stay bare; nested ones are prefixed with the element they belong to,
// e.g. "steps[1].ingredients[0]: quantity must be a positive number".
func FlattenErrors(err error) []string {
	var out []string
	flatten("", err, &out)
	return out
}

func flatten(path string, err error, out *[]string) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k, v := range errs {
			if v != nil {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			a, aErr := strconv.Atoi(keys[i])
			b, bErr := strconv.Atoi(keys[j])
			if aErr == nil && bErr == nil {
				return a < b
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			// field names are already part of the message; only containers go in the path
			next := path
			var nested validation.Errors
			if _, idxErr := strconv.Atoi(k); idxErr == nil || errors.As(errs[k], &nested) {
				next = joinPath(path, k)
			}
			flatten(next, errs[k], out)
		}
		return
	}

	if path == "" {
		*out = append(*out, err.Error())
		return
	}
	*out = append(*out, path+": "+err.Error())
}

func joinPath(path, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return path + "[" + key + "]"
	}
	if path == "" {
		return key
	}
	return path + "." + key
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type CreateRecipeResponse struct {
	CreatedRecipe *RecipeDetail `json:"createdRecipe"`
	Message       string        `json:"message"`
}

type UpdateRecipeResponse struct {
	UpdatedRecipe *RecipeDetail `json:"updatedRecipe"`
	Message       string        `json:"message"`
}

// NameAvailability is the check-name result; Message is set only when unavailable
type NameAvailability struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}
