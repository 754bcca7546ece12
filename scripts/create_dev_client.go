package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/config"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	devUnits       = []string{"g", "ml", "piece", "tbsp"}
	devIngredients = []string{"Flour", "Milk", "Egg", "Tomato", "Onion", "Olive oil"}
)

func main() {
	// Parse command line flags
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	seedCatalog := flag.Bool("seed-catalog", false, "Also create a few units and ingredients")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.Open(conf.Database())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()

	// Determine client credentials based on role
	var clientID, clientSecret string
	if *role == models.RoleUser {
		clientID = "user-client"
		clientSecret = "user-secret-123"
	} else {
		clientID = "dev-client"
		clientSecret = "dev-secret-123"
	}

	clientService := services.NewClientService(db)

	// Check if client already exists
	if _, err := clientService.GetClientByID(clientID); err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		printCredentials(clientID, clientSecret)
		return
	}

	// Get or create user with specified role
	userID := getUserIDForRole(db, *role)
	if userID == 0 {
		log.Fatal("Failed to get user ID for role:", *role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash secret:", err)
	}

	client := &models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", *role),
		Domain:     "http://localhost",
		UserID:     userID,
		Scopes:     "read write",
		GrantTypes: "client_credentials",
	}
	if err := clientService.CreateClient(client); err != nil {
		log.Fatal("Failed to create client:", err)
	}

	if *seedCatalog {
		seedDevCatalog(ctx, services.NewCatalogService(db))
	}

	fmt.Printf("Development OAuth client created for role '%s'!\n", *role)
	printCredentials(clientID, clientSecret)
	fmt.Printf("User ID: %d\n", userID)
}

func printCredentials(clientID, clientSecret string) {
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:8080/api/v1/oauth/token \\\n")
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// getUserIDForRole gets or creates a user with the specified role
func getUserIDForRole(db *gorm.DB, role string) uint {
	userService := services.NewUserService(db)
	email := fmt.Sprintf("%s@foodplanner.local", role)

	// Try to find existing user
	if user, err := userService.GetUserByEmail(email); err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user.ID
	}

	user := &models.User{
		Email:    email,
		Username: role,
		Name:     fmt.Sprintf("%s User", role),
		Role:     role,
	}
	if err := userService.CreateUser(user); err != nil {
		log.Printf("Failed to create user: %v", err)
		return 0
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user.ID
}

// seedDevCatalog creates the development units and ingredients, skipping existing ones
func seedDevCatalog(ctx context.Context, catalog services.CatalogService) {
	for _, name := range devUnits {
		if _, err := catalog.CreateUnit(ctx, name); err != nil && !errors.Is(err, services.ErrConflict) {
			log.Printf("Failed to create unit %s: %v", name, err)
		}
	}
	for _, name := range devIngredients {
		if _, err := catalog.CreateIngredient(ctx, name, nil); err != nil && !errors.Is(err, services.ErrConflict) {
			log.Printf("Failed to create ingredient %s: %v", name, err)
		}
	}
	fmt.Printf("Seeded %d units and %d ingredients\n", len(devUnits), len(devIngredients))
}
