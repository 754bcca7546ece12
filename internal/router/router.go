package router

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies holds everything the HTTP layer needs
type Dependencies struct {
	DB        *gorm.DB
	JWTSecret string
	// Redis enables write rate limiting when set
	Redis              *redis.Client
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

// Setup builds the gin engine with all routes registered
func Setup(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))

	userService := services.NewUserService(deps.DB)
	recipeService := services.NewRecipeService(deps.DB)
	ratingService := services.NewRatingService(deps.DB)
	catalogService := services.NewCatalogService(deps.DB)
	listService := services.NewGroceryListService(deps.DB)
	itemService := services.NewGroceryItemService(deps.DB)
	planningService := services.NewPlanningService(deps.DB)
	feedService := services.NewFeedService(deps.DB)
	clientService := services.NewClientService(deps.DB)
	aggregator := services.NewGroceryAggregator(deps.DB)
	oauthService := auth.NewOAuthService(deps.DB, deps.JWTSecret)

	authController := controllers.NewAuthController(userService, deps.JWTSecret)
	recipeController := controllers.NewRecipeController(recipeService)
	ratingController := controllers.NewRatingController(ratingService)
	catalogController := controllers.NewCatalogController(catalogService)
	listController := controllers.NewGroceryListController(listService, itemService, aggregator)
	planningController := controllers.NewPlanningController(planningService)
	socialController := controllers.NewSocialController(userService)
	feedController := controllers.NewFeedController(feedService)
	clientController := controllers.NewClientController(clientService)

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewWriteRateLimiter(deps.Redis, deps.RateLimitPerMinute)
	}

	router.GET("/health", healthCheckHandler)

	v1 := router.Group("/api/v1")
	{
		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
		}
		v1.POST("/oauth/token", oauthService.HandleToken)

		v1.GET("/recipes", recipeController.ListRecipes)
		v1.GET("/recipes/:id", recipeController.GetRecipe)
		v1.GET("/recipes/:id/ingredients", recipeController.ScaledIngredients)
		v1.GET("/recipes/:id/ratings", ratingController.ListRatings)
		v1.GET("/ingredients", catalogController.ListIngredients)
		v1.GET("/units", catalogController.ListUnits)

		// Everything below requires a bearer token; machine clients additionally
		// need the write scope on mutating routes
		protectedApi := v1.Group("")
		protectedApi.Use(middleware.OAuth2Auth([]byte(deps.JWTSecret)))
		protectedApi.Use(limiter.Middleware())
		{
			readApi := protectedApi.Group("")
			readApi.Use(middleware.RequireScope("read"))
			{
				readApi.GET("/grocery-lists", listController.ListLists)
				readApi.GET("/grocery-lists/:id", listController.GetList)
				readApi.GET("/grocery-lists/:id/items", listController.ListItems)
				readApi.GET("/grocery-lists/:id/planned-recipes", planningController.ListPlannedRecipes)
				readApi.GET("/grocery-lists/:id/planned-extras", planningController.ListExtras)
				readApi.GET("/users/me/following", socialController.ListFollowing)
				readApi.GET("/users/me/followers", socialController.ListFollowers)
				readApi.GET("/users/search", socialController.SearchUsers)
				readApi.GET("/users/:id", socialController.GetUser)
				readApi.GET("/feed", feedController.Feed)
				readApi.GET("/feed/:id/comments", feedController.ListComments)
				readApi.GET("/clients", clientController.ListClients)
			}

			writeApi := protectedApi.Group("")
			writeApi.Use(middleware.RequireScope("write"))
			{
				writeApi.POST("/grocery-lists", listController.CreateList)
				writeApi.PATCH("/grocery-lists/:id", listController.RenameList)
				writeApi.DELETE("/grocery-lists/:id", listController.DeleteList)
				writeApi.POST("/grocery-lists/:id/recompute", listController.Recompute)
				writeApi.PATCH("/grocery-lists/:id/items/:itemId", listController.UpdateItem)

				writeApi.POST("/grocery-lists/:id/planned-recipes", planningController.PlanRecipe)
				writeApi.PATCH("/grocery-lists/:id/planned-recipes/:plannedId", planningController.UpdatePlannedRecipe)
				writeApi.DELETE("/grocery-lists/:id/planned-recipes/:plannedId", planningController.DeletePlannedRecipe)
				writeApi.POST("/grocery-lists/:id/planned-extras", planningController.AddExtra)
				writeApi.PATCH("/grocery-lists/:id/planned-extras/:extraId", planningController.UpdateExtra)
				writeApi.DELETE("/grocery-lists/:id/planned-extras/:extraId", planningController.DeleteExtra)

				writeApi.POST("/recipes", recipeController.CreateRecipe)
				writeApi.PUT("/recipes/:id", recipeController.UpdateRecipe)
				writeApi.DELETE("/recipes/:id", recipeController.DeleteRecipe)
				writeApi.POST("/recipes/:id/ratings", ratingController.CreateRating)
				writeApi.PATCH("/ratings/:ratingId", ratingController.UpdateRating)
				writeApi.DELETE("/ratings/:ratingId", ratingController.DeleteRating)

				writeApi.POST("/users/:id/follow", socialController.Follow)
				writeApi.DELETE("/users/:id/follow", socialController.Unfollow)
				writeApi.POST("/feed/:id/like", feedController.Like)
				writeApi.DELETE("/feed/:id/like", feedController.Unlike)
				writeApi.POST("/feed/:id/comments", feedController.AddComment)
				writeApi.PATCH("/comments/:commentId", feedController.UpdateComment)
				writeApi.DELETE("/comments/:commentId", feedController.DeleteComment)

				writeApi.POST("/clients", clientController.CreateClient)
				writeApi.DELETE("/clients/:id", clientController.DeleteClient)

				adminApi := writeApi.Group("")
				adminApi.Use(middleware.RequireRole(models.RoleAdmin))
				{
					adminApi.POST("/ingredients", catalogController.CreateIngredient)
					adminApi.DELETE("/ingredients/:id", catalogController.DeleteIngredient)
					adminApi.POST("/units", catalogController.CreateUnit)
					adminApi.DELETE("/units/:id", catalogController.DeleteUnit)
				}
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	config.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	config.MaxAge = 12 * time.Hour
	return config
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-foodplanner-api",
	})
}
