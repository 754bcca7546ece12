package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PlanningController exposes the planned recipes and extras of a grocery list.
// Every write recomputes the list items before responding.
type PlanningController struct {
	planningService services.PlanningService
}

func NewPlanningController(planningService services.PlanningService) *PlanningController {
	return &PlanningController{planningService: planningService}
}

// listAndUser resolves the caller and the :id list parameter
func listAndUser(c *gin.Context) (userID, listID uint, ok bool) {
	if userID, ok = currentUser(c); !ok {
		return 0, 0, false
	}
	if listID, ok = parseIDParam(c, "id"); !ok {
		return 0, 0, false
	}
	return userID, listID, true
}

// PlanRecipe godoc
// @Summary Plan a recipe into a grocery list
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param planned body services.PlannedRecipeInput true "Planned recipe"
// @Success 201 {object} models.PlannedRecipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-recipes [post]
func (pc *PlanningController) PlanRecipe(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}

	var input services.PlannedRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	planned, err := pc.planningService.PlanRecipe(c.Request.Context(), userID, listID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, planned)
}

// ListPlannedRecipes godoc
// @Summary List the planned recipes of a grocery list
// @Tags planning
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {array} models.PlannedRecipe
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-recipes [get]
func (pc *PlanningController) ListPlannedRecipes(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}

	planned, err := pc.planningService.ListPlannedRecipes(c.Request.Context(), userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, planned)
}

// UpdatePlannedRecipe godoc
// @Summary Update or move a planned recipe
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param plannedId path int true "Planned recipe ID"
// @Param planned body services.PlannedRecipeUpdate true "Changes"
// @Success 200 {object} models.PlannedRecipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-recipes/{plannedId} [patch]
func (pc *PlanningController) UpdatePlannedRecipe(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}
	plannedID, ok := parseIDParam(c, "plannedId")
	if !ok {
		return
	}

	var update services.PlannedRecipeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}

	planned, err := pc.planningService.UpdatePlannedRecipe(c.Request.Context(), userID, listID, plannedID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, planned)
}

// DeletePlannedRecipe godoc
// @Summary Remove a planned recipe
// @Tags planning
// @Param id path int true "List ID"
// @Param plannedId path int true "Planned recipe ID"
// @Success 204 "Planned recipe removed"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-recipes/{plannedId} [delete]
func (pc *PlanningController) DeletePlannedRecipe(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}
	plannedID, ok := parseIDParam(c, "plannedId")
	if !ok {
		return
	}

	if err := pc.planningService.DeletePlannedRecipe(c.Request.Context(), userID, listID, plannedID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddExtra godoc
// @Summary Add an extra ingredient to a grocery list
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param extra body services.PlannedExtraInput true "Extra"
// @Success 201 {object} models.PlannedExtra
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-extras [post]
func (pc *PlanningController) AddExtra(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}

	var input services.PlannedExtraInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	extra, err := pc.planningService.AddExtra(c.Request.Context(), userID, listID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, extra)
}

// ListExtras godoc
// @Summary List the extras of a grocery list
// @Tags planning
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {array} models.PlannedExtra
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-extras [get]
func (pc *PlanningController) ListExtras(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}

	extras, err := pc.planningService.ListExtras(c.Request.Context(), userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, extras)
}

// UpdateExtra godoc
// @Summary Update or move an extra
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param extraId path int true "Extra ID"
// @Param extra body services.PlannedExtraUpdate true "Changes"
// @Success 200 {object} models.PlannedExtra
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-extras/{extraId} [patch]
func (pc *PlanningController) UpdateExtra(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}
	extraID, ok := parseIDParam(c, "extraId")
	if !ok {
		return
	}

	var update services.PlannedExtraUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}

	extra, err := pc.planningService.UpdateExtra(c.Request.Context(), userID, listID, extraID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, extra)
}

// DeleteExtra godoc
// @Summary Remove an extra
// @Tags planning
// @Param id path int true "List ID"
// @Param extraId path int true "Extra ID"
// @Success 204 "Extra removed"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/planned-extras/{extraId} [delete]
func (pc *PlanningController) DeleteExtra(c *gin.Context) {
	userID, listID, ok := listAndUser(c)
	if !ok {
		return
	}
	extraID, ok := parseIDParam(c, "extraId")
	if !ok {
		return
	}

	if err := pc.planningService.DeleteExtra(c.Request.Context(), userID, listID, extraID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
