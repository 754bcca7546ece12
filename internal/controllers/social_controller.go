package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

type SocialController struct {
	userService services.UserService
}

func NewSocialController(userService services.UserService) *SocialController {
	return &SocialController{userService: userService}
}

// GetUser godoc
// @Summary Public profile of a user
// @Tags social
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id} [get]
func (sc *SocialController) GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := sc.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SearchUsers godoc
// @Summary Search users by username or name
// @Tags social
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} models.User
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/search [get]
func (sc *SocialController) SearchUsers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := sc.userService.SearchUsers(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Follow godoc
// @Summary Follow a user
// @Tags social
// @Param id path int true "User ID"
// @Success 204 "Following"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/follow [post]
func (sc *SocialController) Follow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	followedID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.userService.Follow(c.Request.Context(), userID, followedID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unfollow godoc
// @Summary Stop following a user
// @Tags social
// @Param id path int true "User ID"
// @Success 204 "Not following"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/users/{id}/follow [delete]
func (sc *SocialController) Unfollow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	followedID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.userService.Unfollow(c.Request.Context(), userID, followedID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFollowing godoc
// @Summary Users followed by the caller
// @Tags social
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/users/me/following [get]
func (sc *SocialController) ListFollowing(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := sc.userService.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListFollowers godoc
// @Summary Users following the caller
// @Tags social
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /api/v1/users/me/followers [get]
func (sc *SocialController) ListFollowers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := sc.userService.ListFollowers(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
