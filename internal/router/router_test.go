package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	engine := Setup(Dependencies{
		DB:                 db,
		JWTSecret:          testSecret,
		RateLimitPerMinute: 60,
	})
	return &testAPI{t: t, db: db, engine: engine}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// expect asserts the status and decodes the body into out when given
func (a *testAPI) expect(w *httptest.ResponseRecorder, status int, out interface{}) {
	a.t.Helper()
	require.Equal(a.t, status, w.Code, w.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

// signup registers a user, optionally promotes them, and returns a login token
func (a *testAPI) signup(username, role string) (uint, string) {
	a.t.Helper()
	var user models.User
	a.expect(a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	}), http.StatusCreated, &user)

	if role != models.RoleUser {
		require.NoError(a.t, a.db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", role).Error)
	}

	var login struct {
		AccessToken string `json:"access_token"`
	}
	a.expect(a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "password123",
	}), http.StatusOK, &login)
	require.NotEmpty(a.t, login.AccessToken)
	return user.ID, login.AccessToken
}

type catalog struct {
	grams, flour, tomato uint
}

func (a *testAPI) seedCatalog(adminToken string) catalog {
	a.t.Helper()
	var unit models.Unit
	var flour, tomato models.Ingredient
	a.expect(a.do(http.MethodPost, "/api/v1/units", adminToken, map[string]string{"name": "g"}), http.StatusCreated, &unit)
	a.expect(a.do(http.MethodPost, "/api/v1/ingredients", adminToken, map[string]string{"name": "Flour"}), http.StatusCreated, &flour)
	a.expect(a.do(http.MethodPost, "/api/v1/ingredients", adminToken, map[string]string{"name": "Tomato"}), http.StatusCreated, &tomato)
	return catalog{grams: unit.ID, flour: flour.ID, tomato: tomato.ID}
}

func (a *testAPI) createRecipe(token, title string, lines ...map[string]interface{}) models.Recipe {
	a.t.Helper()
	var recipe models.Recipe
	a.expect(a.do(http.MethodPost, "/api/v1/recipes", token, map[string]interface{}{
		"title":       title,
		"content":     "Mix and bake.",
		"ingredients": lines,
	}), http.StatusCreated, &recipe)
	return recipe
}

func line(ingredientID, unitID uint, quantity float64) map[string]interface{} {
	return map[string]interface{}{"ingredient_id": ingredientID, "unit_id": unitID, "quantity": quantity}
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)
	var body map[string]string
	api.expect(api.do(http.MethodGet, "/health", "", nil), http.StatusOK, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/grocery-lists", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/feed", "not-a-jwt", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/recipes", "", nil).Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.signup("alice", models.RoleUser)

	w := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogWritesAreAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	_, userToken := api.signup("alice", models.RoleUser)
	_, adminToken := api.signup("chef", models.RoleAdmin)

	w := api.do(http.MethodPost, "/api/v1/ingredients", userToken, map[string]string{"name": "Salt"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	ids := api.seedCatalog(adminToken)
	w = api.do(http.MethodPost, "/api/v1/units", adminToken, map[string]string{"name": "g"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var ingredients []models.Ingredient
	api.expect(api.do(http.MethodGet, "/api/v1/ingredients?search=flo", "", nil), http.StatusOK, &ingredients)
	require.Len(t, ingredients, 1)
	assert.Equal(t, ids.flour, ingredients[0].ID)
}

func TestGroceryListAggregationFlow(t *testing.T) {
	api := newTestAPI(t)
	_, adminToken := api.signup("chef", models.RoleAdmin)
	_, aliceToken := api.signup("alice", models.RoleUser)
	_, bobToken := api.signup("bob", models.RoleUser)
	ids := api.seedCatalog(adminToken)

	lasagna := api.createRecipe(aliceToken, "Lasagna",
		line(ids.flour, ids.grams, 100),
		line(ids.tomato, ids.grams, 50))

	var list models.GroceryList
	api.expect(api.do(http.MethodPost, "/api/v1/grocery-lists", aliceToken, map[string]string{"name": "Week 1"}), http.StatusCreated, &list)
	listPath := fmt.Sprintf("/api/v1/grocery-lists/%d", list.ID)

	api.expect(api.do(http.MethodPost, listPath+"/planned-recipes", aliceToken, map[string]interface{}{
		"recipe_id": lasagna.ID,
		"guests":    4,
	}), http.StatusCreated, nil)
	api.expect(api.do(http.MethodPost, listPath+"/planned-extras", aliceToken, map[string]interface{}{
		"ingredient_id": ids.flour,
		"unit_id":       ids.grams,
		"quantity":      50,
	}), http.StatusCreated, nil)

	var items []models.GroceryListItem
	api.expect(api.do(http.MethodGet, listPath+"/items", aliceToken, nil), http.StatusOK, &items)
	require.Len(t, items, 2)
	byIngredient := map[uint]models.GroceryListItem{}
	for _, item := range items {
		byIngredient[item.IngredientID] = item
	}
	assert.Equal(t, 450.0, byIngredient[ids.flour].Quantity)
	assert.Equal(t, "4p Lasagna & Extras", byIngredient[ids.flour].FromRecipes)
	assert.Equal(t, 200.0, byIngredient[ids.tomato].Quantity)
	assert.Equal(t, "4p Lasagna", byIngredient[ids.tomato].FromRecipes)

	flourPath := fmt.Sprintf("%s/items/%d", listPath, byIngredient[ids.flour].ID)
	api.expect(api.do(http.MethodPatch, flourPath, aliceToken, map[string]bool{"is_checked": true}), http.StatusOK, nil)
	w := api.do(http.MethodPatch, flourPath, aliceToken, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity")

	// a recompute keeps the checked flag of lines that are still required
	api.expect(api.do(http.MethodPost, listPath+"/recompute", aliceToken, nil), http.StatusOK, &items)
	for _, item := range items {
		if item.IngredientID == ids.flour {
			assert.True(t, item.IsChecked)
			assert.Equal(t, 450.0, item.Quantity)
		}
	}

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, listPath+"/items", bobToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, listPath+"/planned-recipes", bobToken, map[string]interface{}{
		"recipe_id": lasagna.ID,
		"guests":    2,
	}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/v1/grocery-lists/9999/recompute", aliceToken, nil).Code)

	// deleting the recipe leaves only the extra
	api.expect(api.do(http.MethodDelete, fmt.Sprintf("/api/v1/recipes/%d", lasagna.ID), aliceToken, nil), http.StatusNoContent, nil)
	api.expect(api.do(http.MethodGet, listPath+"/items", aliceToken, nil), http.StatusOK, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 50.0, items[0].Quantity)
	assert.Equal(t, "Extras", items[0].FromRecipes)
	assert.True(t, items[0].IsChecked)
}

func TestPlanningValidation(t *testing.T) {
	api := newTestAPI(t)
	_, adminToken := api.signup("chef", models.RoleAdmin)
	_, aliceToken := api.signup("alice", models.RoleUser)
	ids := api.seedCatalog(adminToken)
	recipe := api.createRecipe(aliceToken, "Bread", line(ids.flour, ids.grams, 250))

	var list models.GroceryList
	api.expect(api.do(http.MethodPost, "/api/v1/grocery-lists", aliceToken, map[string]string{"name": "Bake day"}), http.StatusCreated, &list)

	w := api.do(http.MethodPost, fmt.Sprintf("/api/v1/grocery-lists/%d/planned-recipes", list.ID), aliceToken, map[string]interface{}{
		"recipe_id": recipe.ID,
		"guests":    -2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/v1/grocery-lists/%d/planned-recipes", list.ID), aliceToken, map[string]interface{}{
		"recipe_id": 9999,
		"guests":    2,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var apiErr models.APIError
	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/v1/grocery-lists/%d/planned-recipes", list.ID), aliceToken, map[string]interface{}{
		"recipe_id": recipe.ID,
		"guests":    "four",
	}), http.StatusBadRequest, &apiErr)
	assert.Equal(t, models.ErrValidationFailed, apiErr.Code)
}

func TestRecipeEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, adminToken := api.signup("chef", models.RoleAdmin)
	_, aliceToken := api.signup("alice", models.RoleUser)
	_, bobToken := api.signup("bob", models.RoleUser)
	ids := api.seedCatalog(adminToken)
	recipe := api.createRecipe(aliceToken, "Pancakes", line(ids.flour, ids.grams, 62.5))

	var lines []string
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d/ingredients?guests=3", recipe.ID), "", nil), http.StatusOK, &lines)
	assert.Equal(t, []string{"Flour: 187.50 g"}, lines)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d/ingredients?guests=0", recipe.ID), "", nil).Code)

	w := api.do(http.MethodPut, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), bobToken, map[string]interface{}{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var updated models.Recipe
	api.expect(api.do(http.MethodPut, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), adminToken, map[string]interface{}{
		"title":       "Fluffy Pancakes",
		"ingredients": []map[string]interface{}{line(ids.flour, ids.grams, 70)},
	}), http.StatusOK, &updated)
	assert.Equal(t, "Fluffy Pancakes", updated.Title)

	var page struct {
		Recipes []models.Recipe `json:"recipes"`
		Total   int64           `json:"total"`
	}
	api.expect(api.do(http.MethodGet, "/api/v1/recipes?search="+url.QueryEscape("fluffy"), "", nil), http.StatusOK, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/recipes/9999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/recipes/abc", "", nil).Code)
}

func TestRatingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signup("alice", models.RoleUser)
	_, bobToken := api.signup("bob", models.RoleUser)
	_, carolToken := api.signup("carol", models.RoleUser)
	recipe := api.createRecipe(aliceToken, "Soup")
	ratingsPath := fmt.Sprintf("/api/v1/recipes/%d/ratings", recipe.ID)

	var rating models.RecipeRating
	api.expect(api.do(http.MethodPost, ratingsPath, bobToken, map[string]interface{}{"rating": 8, "comment": "tasty"}), http.StatusCreated, &rating)
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, ratingsPath, bobToken, map[string]interface{}{"rating": 2}).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, ratingsPath, carolToken, map[string]interface{}{"rating": 11}).Code)
	var apiErr models.APIError
	api.expect(api.do(http.MethodPost, ratingsPath, carolToken, map[string]interface{}{"comment": "no score"}), http.StatusBadRequest, &apiErr)
	assert.Equal(t, models.ErrValidationFailed, apiErr.Code)
	api.expect(api.do(http.MethodPost, ratingsPath, carolToken, map[string]interface{}{"rating": 5}), http.StatusCreated, nil)

	var fetched models.Recipe
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), "", nil), http.StatusOK, &fetched)
	assert.Equal(t, 2, fetched.RatingCount)
	assert.InDelta(t, 6.5, fetched.AverageRating, 1e-9)

	ratingPath := fmt.Sprintf("/api/v1/ratings/%d", rating.ID)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, ratingPath, carolToken, map[string]interface{}{"rating": 0}).Code)
	api.expect(api.do(http.MethodDelete, ratingPath, bobToken, nil), http.StatusNoContent, nil)

	var ratings []models.RecipeRating
	api.expect(api.do(http.MethodGet, ratingsPath, "", nil), http.StatusOK, &ratings)
	assert.Len(t, ratings, 1)
}

func TestFollowAndFeed(t *testing.T) {
	api := newTestAPI(t)
	aliceID, aliceToken := api.signup("alice", models.RoleUser)
	_, bobToken := api.signup("bob", models.RoleUser)

	followPath := fmt.Sprintf("/api/v1/users/%d/follow", aliceID)
	api.expect(api.do(http.MethodPost, followPath, bobToken, nil), http.StatusNoContent, nil)
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPost, followPath, bobToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, followPath, aliceToken, nil).Code)

	api.createRecipe(aliceToken, "Salad")

	var feed struct {
		Items []models.FeedItem `json:"items"`
	}
	api.expect(api.do(http.MethodGet, "/api/v1/feed", bobToken, nil), http.StatusOK, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, aliceID, feed.Items[0].UserID)

	var following []models.User
	api.expect(api.do(http.MethodGet, "/api/v1/users/me/following", bobToken, nil), http.StatusOK, &following)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].Username)

	var followers []models.User
	api.expect(api.do(http.MethodGet, "/api/v1/users/me/followers", aliceToken, nil), http.StatusOK, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].Username)

	var profile models.User
	api.expect(api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", aliceID), bobToken, nil), http.StatusOK, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.NotContains(t, api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", aliceID), bobToken, nil).Body.String(), "password")
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/users/999", bobToken, nil).Code)

	var found []models.User
	api.expect(api.do(http.MethodGet, "/api/v1/users/search?q=ALI", bobToken, nil), http.StatusOK, &found)
	require.Len(t, found, 1)
	assert.Equal(t, aliceID, found[0].ID)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/v1/users/search", bobToken, nil).Code)

	api.expect(api.do(http.MethodDelete, followPath, bobToken, nil), http.StatusNoContent, nil)
	api.expect(api.do(http.MethodGet, "/api/v1/feed", bobToken, nil), http.StatusOK, &feed)
	assert.Empty(t, feed.Items)
}

func TestFeedLikesAndComments(t *testing.T) {
	api := newTestAPI(t)
	aliceID, aliceToken := api.signup("alice", models.RoleUser)
	_, bobToken := api.signup("bob", models.RoleUser)
	_, carolToken := api.signup("carol", models.RoleUser)

	api.expect(api.do(http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", aliceID), bobToken, nil), http.StatusNoContent, nil)
	api.createRecipe(aliceToken, "Salad")

	var feed struct {
		Items []models.FeedItem `json:"items"`
	}
	api.expect(api.do(http.MethodGet, "/api/v1/feed", bobToken, nil), http.StatusOK, &feed)
	require.Len(t, feed.Items, 1)
	item := feed.Items[0]
	assert.Zero(t, item.LikeCount)
	assert.False(t, item.IsLikedByUser)

	likePath := fmt.Sprintf("/api/v1/feed/%d/like", item.ID)
	api.expect(api.do(http.MethodPost, likePath, bobToken, nil), http.StatusCreated, nil)
	api.expect(api.do(http.MethodPost, likePath, bobToken, nil), http.StatusOK, nil)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/api/v1/feed/999/like", bobToken, nil).Code)

	commentsPath := fmt.Sprintf("/api/v1/feed/%d/comments", item.ID)
	var comment models.FeedItemComment
	api.expect(api.do(http.MethodPost, commentsPath, bobToken, map[string]string{"content": "crunchy"}), http.StatusCreated, &comment)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, commentsPath, bobToken, map[string]string{}).Code)

	api.expect(api.do(http.MethodGet, "/api/v1/feed", bobToken, nil), http.StatusOK, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, int64(1), feed.Items[0].LikeCount)
	assert.Equal(t, int64(1), feed.Items[0].CommentCount)
	assert.True(t, feed.Items[0].IsLikedByUser)

	api.expect(api.do(http.MethodGet, "/api/v1/feed", aliceToken, nil), http.StatusOK, &feed)
	require.Len(t, feed.Items, 1)
	assert.False(t, feed.Items[0].IsLikedByUser)

	commentPath := fmt.Sprintf("/api/v1/comments/%d", comment.ID)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, commentPath, carolToken, map[string]string{"content": "mine now"}).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, commentPath, carolToken, nil).Code)
	api.expect(api.do(http.MethodPatch, commentPath, bobToken, map[string]string{"content": "very crunchy"}), http.StatusOK, &comment)
	assert.Equal(t, "very crunchy", comment.Content)

	var comments []models.FeedItemComment
	api.expect(api.do(http.MethodGet, commentsPath, carolToken, nil), http.StatusOK, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "very crunchy", comments[0].Content)

	api.expect(api.do(http.MethodDelete, commentPath, bobToken, nil), http.StatusNoContent, nil)
	api.expect(api.do(http.MethodDelete, likePath, bobToken, nil), http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, likePath, bobToken, nil).Code)

	api.expect(api.do(http.MethodGet, "/api/v1/feed", bobToken, nil), http.StatusOK, &feed)
	require.Len(t, feed.Items, 1)
	assert.Zero(t, feed.Items[0].LikeCount)
	assert.Zero(t, feed.Items[0].CommentCount)
}

func TestClientCredentialsActAsOwner(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signup("alice", models.RoleUser)

	issue := func(scopes string) string {
		var creds struct {
			Client       models.OAuthClient `json:"client"`
			ClientSecret string             `json:"client_secret"`
		}
		api.expect(api.do(http.MethodPost, "/api/v1/clients", aliceToken, map[string]string{
			"name":   "planner-bot " + scopes,
			"scopes": scopes,
		}), http.StatusCreated, &creds)

		form := url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {creds.Client.ID},
			"client_secret": {creds.ClientSecret},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/oauth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)

		var token struct {
			AccessToken string `json:"access_token"`
		}
		api.expect(w, http.StatusOK, &token)
		return token.AccessToken
	}

	readWrite := issue("read write")
	var list models.GroceryList
	api.expect(api.do(http.MethodPost, "/api/v1/grocery-lists", readWrite, map[string]string{"name": "Bot list"}), http.StatusCreated, &list)

	readOnly := issue("read")
	var lists []models.GroceryList
	api.expect(api.do(http.MethodGet, "/api/v1/grocery-lists", readOnly, nil), http.StatusOK, &lists)
	require.Len(t, lists, 1)
	assert.Equal(t, list.ID, lists[0].ID)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/v1/grocery-lists", readOnly, map[string]string{"name": "Nope"}).Code)

	var clients []models.OAuthClient
	api.expect(api.do(http.MethodGet, "/api/v1/clients", aliceToken, nil), http.StatusOK, &clients)
	assert.Len(t, clients, 2)
}
