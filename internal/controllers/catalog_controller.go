package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CatalogController serves ingredients and units. Writes are admin only,
// enforced by the router.
type CatalogController struct {
	catalogService services.CatalogService
}

func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

type ingredientRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	FdcID *int   `json:"fdc_id"`
}

type unitRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ListIngredients godoc
// @Summary List ingredients
// @Tags catalog
// @Produce json
// @Param search query string false "Name fragment"
// @Success 200 {array} models.Ingredient
// @Router /api/v1/ingredients [get]
func (cc *CatalogController) ListIngredients(c *gin.Context) {
	ingredients, err := cc.catalogService.ListIngredients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// CreateIngredient godoc
// @Summary Create an ingredient
// @Tags catalog
// @Accept json
// @Produce json
// @Param ingredient body ingredientRequest true "Ingredient"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ingredients [post]
func (cc *CatalogController) CreateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ingredient, err := cc.catalogService.CreateIngredient(c.Request.Context(), req.Name, req.FdcID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

// DeleteIngredient godoc
// @Summary Delete an unused ingredient
// @Tags catalog
// @Param id path int true "Ingredient ID"
// @Success 204 "Ingredient deleted"
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ingredients/{id} [delete]
func (cc *CatalogController) DeleteIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.catalogService.DeleteIngredient(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUnits godoc
// @Summary List units
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Unit
// @Router /api/v1/units [get]
func (cc *CatalogController) ListUnits(c *gin.Context) {
	units, err := cc.catalogService.ListUnits(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// CreateUnit godoc
// @Summary Create a unit
// @Tags catalog
// @Accept json
// @Produce json
// @Param unit body unitRequest true "Unit"
// @Success 201 {object} models.Unit
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/units [post]
func (cc *CatalogController) CreateUnit(c *gin.Context) {
	var req unitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	unit, err := cc.catalogService.CreateUnit(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

// DeleteUnit godoc
// @Summary Delete an unused unit
// @Tags catalog
// @Param id path int true "Unit ID"
// @Success 204 "Unit deleted"
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/units/{id} [delete]
func (cc *CatalogController) DeleteUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.catalogService.DeleteUnit(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
