package model

import (
	"errors"
	"fmt"
	"net/http"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeRecipeNotFound     = "RECIPE_NOT_FOUND"
	ErrCodeRecipeNameExists   = "RECIPE_NAME_EXISTS"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeIngredientNotFound = "INGREDIENT_NOT_FOUND"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrDuplicateName      = errors.New("a recipe with this name already exists")
	ErrInvalidInput       = errors.New("invalid recipe data")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type RecipeError struct {
	Code    string
	Message string
	Err     error
}

func (e *RecipeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RecipeError) Unwrap() error {
	return e.Err
}

func NewRecipeError(code, message string, err error) *RecipeError {
	return &RecipeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewDuplicateNameError(name string) *RecipeError {
	return NewRecipeError(
		ErrCodeRecipeNameExists,
		fmt.Sprintf("Recipe name %q already exists", name),
		ErrDuplicateName,
	)
}

func NewIngredientNotFoundError(detail string) *RecipeError {
	return NewRecipeError(ErrCodeIngredientNotFound, detail, ErrIngredientNotFound)
}

// ValidationError carries every violation found in a payload
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %v", ErrInvalidInput.Error(), e.Messages)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ErrorCode returns the machine-readable code for err, "" for storage failures
func ErrorCode(err error) string {
	var re *RecipeError
	if errors.As(err, &re) {
		return re.Code
	}
	switch {
	case errors.Is(err, ErrRecipeNotFound):
		return ErrCodeRecipeNotFound
	case errors.Is(err, ErrDuplicateName):
		return ErrCodeRecipeNameExists
	case errors.Is(err, ErrIngredientNotFound):
		return ErrCodeIngredientNotFound
	case errors.Is(err, ErrInvalidInput):
		return ErrCodeInvalidInput
	}
	return ""
}

// GetHTTPStatusCode maps domain errors to HTTP status codes.
// Duplicate names map to 409 here; the create endpoint downgrades it to 400.
func GetHTTPStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIngredientNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
