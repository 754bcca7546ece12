package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

type FeedController struct {
	feedService services.FeedService
}

func NewFeedController(feedService services.FeedService) *FeedController {
	return &FeedController{feedService: feedService}
}

// Feed godoc
// @Summary Activity feed
// @Description Events of the caller and the users they follow, newest first, with like and comment counters
// @Tags feed
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(25)
// @Success 200 {object} services.FeedPage
// @Security BearerAuth
// @Router /api/v1/feed [get]
func (fc *FeedController) Feed(c *gin.Context) {
	userID, ok := currentUser(c)
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

	result, err := fc.feedService.Feed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Like godoc
// @Summary Like a feed item
// @Description Answers 201 for a new like and 200 when the item was already liked
// @Tags feed
// @Param id path int true "Feed item ID"
// @Success 201 "Liked"
// @Success 200 "Already liked"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/feed/{id}/like [post]
func (fc *FeedController) Like(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	created, err := fc.feedService.Like(c.Request.Context(), userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"detail": "Feed item liked"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Feed item already liked"})
}

// Unlike godoc
// @Summary Remove a like from a feed item
// @Tags feed
// @Param id path int true "Feed item ID"
// @Success 204 "Like removed"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/feed/{id}/like [delete]
func (fc *FeedController) Unlike(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := fc.feedService.Unlike(c.Request.Context(), userID, itemID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListComments godoc
// @Summary Comments of a feed item, oldest first
// @Tags feed
// @Produce json
// @Param id path int true "Feed item ID"
// @Success 200 {array} models.FeedItemComment
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/feed/{id}/comments [get]
func (fc *FeedController) ListComments(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := fc.feedService.ListComments(c.Request.Context(), itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment godoc
// @Summary Comment on a feed item
// @Tags feed
// @Accept json
// @Produce json
// @Param id path int true "Feed item ID"
// @Param comment body services.CommentInput true "Comment"
// @Success 201 {object} models.FeedItemComment
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/feed/{id}/comments [post]
func (fc *FeedController) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	comment, err := fc.feedService.AddComment(c.Request.Context(), userID, itemID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Only the author or an admin may edit
// @Tags feed
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param comment body services.CommentInput true "Comment"
// @Success 200 {object} models.FeedItemComment
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/comments/{commentId} [patch]
func (fc *FeedController) UpdateComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	var input services.CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, err)
		return
	}

	comment, err := fc.feedService.UpdateComment(c.Request.Context(), userID, commentID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Only the author or an admin may delete
// @Tags feed
// @Param commentId path int true "Comment ID"
// @Success 204 "Comment deleted"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/comments/{commentId} [delete]
func (fc *FeedController) DeleteComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return
	}

	if err := fc.feedService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
