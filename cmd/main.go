package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-foodplanner-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/config"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-foodplanner-api/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const tokenPurgeInterval = time.Hour

// @title Food Planner API
// @version 1.0
// @description Recipes, ratings and grocery lists aggregated from planned meals
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	db := setupDatabase(configuration)
	redisClient := setupRedis(configuration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeExpiredTokens(ctx, auth.NewGormTokenStore(db))

	engine := router.Setup(router.Dependencies{
		DB:                 db,
		JWTSecret:          configuration.JWTSecret,
		Redis:              redisClient,
		RateLimitPerMinute: configuration.RateLimitPerMinute,
		CORSAllowedOrigins: configuration.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter. LOG_LEVEL wins over
// the level derived from the environment.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.WithError(err).Warnf("Ignoring invalid LOG_LEVEL %q", raw)
			return
		}
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the database and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.AutoMigrate(db))
	return db
}

// setupRedis connects to Redis when REDIS_URL is set. Without it the API runs
// without rate limiting.
func setupRedis(conf *config.Config) *redis.Client {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, rate limiting disabled")
		return nil
	}
	client, err := database.NewRedisClient(conf.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, rate limiting disabled")
		return nil
	}
	return client
}

// purgeExpiredTokens deletes expired OAuth2 tokens until ctx is cancelled
func purgeExpiredTokens(ctx context.Context, store *auth.GormTokenStore) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.PurgeExpired(ctx, now)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired OAuth2 tokens")
				continue
			}
			if removed > 0 {
				log.WithField("removed", removed).Info("Purged expired OAuth2 tokens")
			}
		}
	}
}
