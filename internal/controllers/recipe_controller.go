package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RecipeController struct {
	recipeService services.RecipeService
}

func NewRecipeController(recipeService services.RecipeService) *RecipeController {
	return &RecipeController{recipeService: recipeService}
}

// ListRecipes godoc
// @Summary List recipes
// @Description Newest first, optionally filtered by author or a title fragment
// @Tags recipes
// @Produce json
// @Param author query int false "Author user ID"
// @Param search query string false "Title fragment"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(25)
// @Success 200 {object} services.RecipePage
// @Failure 400 {object} models.APIError
// @Router /api/v1/recipes [get]
func (rc *RecipeController) ListRecipes(c *gin.Context) {
	author, ok := queryInt(c, "author", 0)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", 0)
	if !ok {
		return
	}
	if author < 0 {
		author = 0
	}

	result, err := rc.recipeService.ListRecipes(c.Request.Context(), services.RecipeFilter{
		AuthorID: uint(author),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id} [get]
func (rc *RecipeController) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := rc.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// ScaledIngredients godoc
// @Summary Ingredient lines scaled for a number of guests
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Param guests query int false "Number of guests" default(1)
// @Success 200 {array} string
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id}/ingredients [get]
func (rc *RecipeController) ScaledIngredients(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	guests, ok := queryInt(c, "guests", 1)
	if !ok {
		return
	}

	lines, err := rc.recipeService.ScaledIngredients(c.Request.Context(), id, guests)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, lines)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes [post]
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	recipe, err := rc.recipeService.CreateRecipe(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Replace a recipe
// @Description Author or admin only. Grocery lists planning the recipe pick up the change on their next recompute.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [put]
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	recipe, err := rc.recipeService.UpdateRecipe(c.Request.Context(), userID, id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Author or admin only. Lists that planned it are recomputed.
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204 "Recipe deleted"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [delete]
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := rc.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
