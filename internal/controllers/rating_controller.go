package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService services.RatingService
}

func NewRatingController(ratingService services.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// ListRatings godoc
// @Summary List the ratings of a recipe
// @Tags ratings
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {array} models.RecipeRating
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id}/ratings [get]
func (rc *RatingController) ListRatings(c *gin.Context) {
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ratings, err := rc.ratingService.ListRatings(c.Request.Context(), recipeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ratings)
}

// CreateRating godoc
// @Summary Rate a recipe
// @Description One rating per user and recipe, value between 0 and 10
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param rating body services.RatingInput true "Rating"
// @Success 201 {object} models.RecipeRating
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/ratings [post]
func (rc *RatingController) CreateRating(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	rating, err := rc.ratingService.CreateRating(c.Request.Context(), userID, recipeID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// UpdateRating godoc
// @Summary Update a rating
// @Tags ratings
// @Accept json
// @Produce json
// @Param ratingId path int true "Rating ID"
// @Param rating body services.RatingUpdate true "Changes"
// @Success 200 {object} models.RecipeRating
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ratings/{ratingId} [patch]
func (rc *RatingController) UpdateRating(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ratingID, ok := parseIDParam(c, "ratingId")
	if !ok {
		return
	}

	var update services.RatingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, err)
		return
	}

	rating, err := rc.ratingService.UpdateRating(c.Request.Context(), userID, ratingID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

// DeleteRating godoc
// @Summary Delete a rating
// @Tags ratings
// @Param ratingId path int true "Rating ID"
// @Success 204 "Rating deleted"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/ratings/{ratingId} [delete]
func (rc *RatingController) DeleteRating(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ratingID, ok := parseIDParam(c, "ratingId")
	if !ok {
		return
	}

	if err := rc.ratingService.DeleteRating(c.Request.Context(), userID, ratingID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
