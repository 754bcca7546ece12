package controllers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

type GroceryListController struct {
	listService services.GroceryListService
	itemService services.GroceryItemService
	aggregator  services.GroceryAggregator
}

func NewGroceryListController(listService services.GroceryListService, itemService services.GroceryItemService, aggregator services.GroceryAggregator) *GroceryListController {
	return &GroceryListController{
		listService: listService,
		itemService: itemService,
		aggregator:  aggregator,
	}
}

type groceryListRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateList godoc
// @Summary Create a grocery list
// @Tags grocery-lists
// @Accept json
// @Produce json
// @Param list body groceryListRequest true "List name"
// @Success 201 {object} models.GroceryList
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists [post]
func (gc *GroceryListController) CreateList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req groceryListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	list, err := gc.listService.CreateGroceryList(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, list)
}

// ListLists godoc
// @Summary List own grocery lists
// @Tags grocery-lists
// @Produce json
// @Success 200 {array} models.GroceryList
// @Security BearerAuth
// @Router /api/v1/grocery-lists [get]
func (gc *GroceryListController) ListLists(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	lists, err := gc.listService.ListGroceryLists(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

// GetList godoc
// @Summary Get a grocery list
// @Tags grocery-lists
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {object} models.GroceryList
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id} [get]
func (gc *GroceryListController) GetList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := gc.listService.GetGroceryList(c.Request.Context(), userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// RenameList godoc
// @Summary Rename a grocery list
// @Tags grocery-lists
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param list body groceryListRequest true "New name"
// @Success 200 {object} models.GroceryList
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id} [patch]
func (gc *GroceryListController) RenameList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req groceryListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	list, err := gc.listService.RenameGroceryList(c.Request.Context(), userID, listID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// DeleteList godoc
// @Summary Delete a grocery list
// @Tags grocery-lists
// @Param id path int true "List ID"
// @Success 204 "List deleted"
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id} [delete]
func (gc *GroceryListController) DeleteList(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := gc.listService.DeleteGroceryList(c.Request.Context(), userID, listID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Recompute godoc
// @Summary Rebuild the items of a grocery list
// @Description Recomputes the derived items from the planned recipes and extras. Checked flags of surviving items are kept.
// @Tags grocery-lists
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {array} models.GroceryListItem
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/recompute [post]
func (gc *GroceryListController) Recompute(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := gc.aggregator.Recompute(c.Request.Context(), listID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	items, err := gc.itemService.ListItems(c.Request.Context(), userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// ListItems godoc
// @Summary List the items of a grocery list
// @Tags grocery-lists
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {array} models.GroceryListItem
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/items [get]
func (gc *GroceryListController) ListItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := gc.itemService.ListItems(c.Request.Context(), userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateItem godoc
// @Summary Check or uncheck a grocery list item
// @Description Only is_checked is writable. Quantity and provenance are derived and rejected.
// @Tags grocery-lists
// @Accept json
// @Produce json
// @Param id path int true "List ID"
// @Param itemId path int true "Item ID"
// @Param item body map[string]bool true "{\"is_checked\": true}"
// @Success 200 {object} models.GroceryListItem
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/grocery-lists/{id}/items/{itemId} [patch]
func (gc *GroceryListController) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, err)
		return
	}

	var readOnly []string
	for name := range fields {
		if name != "is_checked" {
			readOnly = append(readOnly, name)
		}
	}
	if len(readOnly) > 0 {
		sort.Strings(readOnly)
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed,
			"Field "+readOnly[0]+" is read-only",
			map[string]interface{}{"read_only_fields": readOnly}))
		return
	}

	raw, present := fields["is_checked"]
	var checked bool
	if !present || json.Unmarshal(raw, &checked) != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed,
			"is_checked must be a boolean"))
		return
	}

	item, err := gc.itemService.SetItemChecked(c.Request.Context(), userID, listID, itemID, checked)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}
