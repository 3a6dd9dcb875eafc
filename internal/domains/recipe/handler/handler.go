package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-backend/internal/domains/recipe/model"
	"recipe-backend/internal/domains/recipe/service"
	"recipe-backend/internal/shared/response"
	"recipe-backend/pkg/logger"
)

// =====================================================
// RECIPE HANDLER
// =====================================================

type RecipeHandler struct {
	recipeService service.ServiceInterface
}

func NewRecipeHandler(recipeService service.ServiceInterface) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

// RegisterRoutes mounts the recipe endpoints on rg (usually /api/recipes)
func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListRecipes)
	rg.GET("/ingredients", h.ListIngredients)
	rg.GET("/check-name", h.CheckName)
	rg.GET("/:id", h.GetRecipe)
	rg.POST("", h.CreateRecipe)
	rg.PUT("/:id", h.UpdateRecipe)
	rg.DELETE("/:id", h.DeleteRecipe)
}

// =====================================================
// READ ENDPOINTS
// =====================================================

// ListRecipes lists recipes page by page
// GET /api/recipes?page=1&pageSize=10
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page := model.ParsePageRequest(c.Query("page"), c.Query("pageSize"))

	result, err := h.recipeService.ListRecipes(c.Request.Context(), page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GET /api/recipes/ingredients
func (h *RecipeHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.recipeService.ListIngredients(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ingredients)
}

// CheckName reports whether a recipe name is still free
// GET /api/recipes/check-name?name=...
func (h *RecipeHandler) CheckName(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		response.ErrorWithBody(c, http.StatusBadRequest, model.NameAvailability{
			Available: false,
			Message:   "No name provided",
		})
		return
	}

	exists, err := h.recipeService.NameExists(c.Request.Context(), name)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if exists {
		response.Success(c, http.StatusOK, model.NameAvailability{
			Available: false,
			Message:   "Recipe name is already taken",
		})
		return
	}

	response.Success(c, http.StatusOK, model.NameAvailability{Available: true})
}

// GetRecipe returns the nested recipe
// GET /api/recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, recipe)
}

// =====================================================
// WRITE ENDPOINTS
// =====================================================

// CreateRecipe creates a recipe with its steps and ingredient lines
// POST /api/recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	// Step 1: Decode request body
	req, ok := h.decodeBody(c)
	if !ok {
		return
	}

	// Step 2: Call service (validates, then writes in one transaction)
	created, err := h.recipeService.CreateRecipe(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, http.StatusBadRequest)
		return
	}

	// Step 3: Return success
	response.Success(c, http.StatusCreated, model.CreateRecipeResponse{
		CreatedRecipe: created,
		Message:       "Recipe created successfully",
	})
}

// UpdateRecipe replaces the recipe with the desired state in the body
// PUT /api/recipes/:id
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	req, ok := h.decodeBody(c)
	if !ok {
		return
	}

	updated, err := h.recipeService.UpdateRecipe(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.UpdateRecipeResponse{
		UpdatedRecipe: updated,
		Message:       "Recipe updated successfully",
	})
}

// DELETE /api/recipes/:id
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Recipe deleted successfully")
}

// =====================================================
// ERROR MAPPING
// =====================================================

// decodeBody reads the recipe payload; type errors come back with the validation messages
func (h *RecipeHandler) decodeBody(c *gin.Context) (model.RecipeRequest, bool) {
	body, err := c.GetRawData()
	if err != nil {
		response.ValidationErrors(c, []string{model.MsgMalformedBody})
		return model.RecipeRequest{}, false
	}

	req, err := model.DecodeRecipeRequest(body)
	if err != nil {
		h.respondError(c, err, http.StatusBadRequest)
		return model.RecipeRequest{}, false
	}
	return req, true
}

func (h *RecipeHandler) handleError(c *gin.Context, err error) {
	h.respondError(c, err, http.StatusConflict)
}

// respondError writes the error body. A duplicate name answers with
// duplicateStatus: 400 on create, 409 everywhere else.
func (h *RecipeHandler) respondError(c *gin.Context, err error, duplicateStatus int) {
	_ = c.Error(err)

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		response.ValidationErrors(c, validationErr.Messages)
		return
	}

	var recipeErr *model.RecipeError
	switch {
	case errors.Is(err, model.ErrRecipeNotFound):
		response.NotFound(c, "Recipe not found")
	case errors.Is(err, model.ErrDuplicateName):
		response.ErrorResponse(c, duplicateStatus, model.ErrorCode(err), "Recipe name already exists")
	case errors.Is(err, model.ErrIngredientNotFound) && errors.As(err, &recipeErr):
		response.ValidationErrors(c, []string{recipeErr.Message})
	case model.GetHTTPStatusCode(err) == http.StatusBadRequest:
		response.ValidationErrors(c, []string{err.Error()})
	default:
		logger.Error("recipe request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
