package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-account-service/internal/config"
	"pos-account-service/internal/database"
	"pos-account-service/internal/delivery/http/handler"
	"pos-account-service/internal/infrastructure/database/postgres"
	"pos-account-service/internal/logger"
	"pos-account-service/internal/mail"
	"pos-account-service/internal/middleware"
	"pos-account-service/internal/storage"
	usecase "pos-account-service/internal/usecase/account"
)

// SetupRoutes builds the engine and wires every dependency explicitly.
// External collaborators (mail dispatch, image store) are constructed by
// the caller and injected, never reached through globals.
func SetupRoutes(cfg *config.Config, db *database.Database, dispatcher mail.Dispatcher, images storage.ImageStore) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "HTTP method is not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	accountRepository := postgres.NewAccountRepository(db)
	tokenRepository := postgres.NewTokenRepository(db)
	accountService := usecase.NewService(accountRepository, tokenRepository, dispatcher, images, cfg)
	accountHandler := handler.NewAccountHandler(accountService)

	root := router.Group("")
	{
		accountHandler.RegisterRoutes(root)

		protected := root.Group("")
		protected.Use(middleware.AuthMiddleware(tokenRepository, accountRepository))
		{
			accountHandler.RegisterProtectedRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}
