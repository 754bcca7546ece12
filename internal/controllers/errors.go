package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondWithError maps service errors to API errors. Anything that is not a
// service error is logged and reported as a 500.
func respondWithError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		_ = c.Error(err)
		log.WithFields(log.Fields{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).WithError(err).Error("Unexpected error while handling request")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "An unexpected error occurred"))
		return
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, svcErr.Message))
	case services.KindPermissionDenied:
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrPermissionDenied, svcErr.Message))
	case services.KindDuplicateRating:
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrDuplicateRating, svcErr.Message))
	case services.KindValidation:
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, svcErr.Message))
	case services.KindConflict:
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, svcErr.Message))
	default:
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, svcErr.Message))
	}
}

// respondBadRequest answers a body that failed to bind or validate
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body",
		map[string]interface{}{"reason": err.Error()}))
}

// parseIDParam reads a positive numeric path parameter. It writes the error
// response itself and returns false when the value is invalid.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid "+name,
			map[string]interface{}{name: raw}))
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the authenticated user id, answering 401 when missing
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return 0, false
	}
	return userID, true
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid "+name,
			map[string]interface{}{name: raw}))
		return 0, false
	}
	return value, true
}
