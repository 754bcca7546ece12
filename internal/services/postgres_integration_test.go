//go:build integration

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/franciscosanchezn/gin-foodplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// setupPostgresDB starts a throwaway PostgreSQL container and migrates it
func setupPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "foodplanner",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		Name:     "foodplanner",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestPostgresRecomputeScenario(t *testing.T) {
	db := setupPostgresDB(t)
	owner := createUser(t, db, "alice", models.RoleUser)
	flour := createIngredient(t, db, "Flour")
	grams := createUnit(t, db, "g")
	recipe := createRecipe(t, db, owner, "Lasagna", line(flour, grams, 100))
	list := createList(t, db, owner, "Week")

	planning := NewPlanningService(db)
	ctx := context.Background()
	_, err := planning.PlanRecipe(ctx, owner.ID, list.ID, PlannedRecipeInput{RecipeID: recipe.ID, Guests: 4})
	require.NoError(t, err)
	_, err = planning.AddExtra(ctx, owner.ID, list.ID, PlannedExtraInput{IngredientID: flour.ID, UnitID: grams.ID, Quantity: 50})
	require.NoError(t, err)

	items := listItems(t, db, list.ID)
	require.Len(t, items, 1)
	assert.Equal(t, 450.0, items[0].Quantity)
	assert.Equal(t, "4p Lasagna & Extras", items[0].FromRecipes)

	require.NoError(t, NewGroceryAggregator(db).Recompute(ctx, list.ID, owner.ID))
	assert.Equal(t, items, listItems(t, db, list.ID))
}

func TestPostgresConcurrentDuplicateRatings(t *testing.T) {
	db := setupPostgresDB(t)
	author := createUser(t, db, "alice", models.RoleUser)
	rater := createUser(t, db, "bob", models.RoleUser)
	recipe := createRecipe(t, db, author, "Soup")
	ratings := NewRatingService(db)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := ratings.CreateRating(context.Background(), rater.ID, recipe.ID, RatingInput{Rating: intPtr(score)})
			errs <- err
		}(i + 1)
	}
	wg.Wait()
	close(errs)

	var created, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateRating):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicates)

	var stored models.Recipe
	require.NoError(t, db.First(&stored, recipe.ID).Error)
	assert.Equal(t, 1, stored.RatingCount)
}
