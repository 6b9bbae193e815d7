package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/database"
	"github.com/botikaph/annotator-backend/internal/middleware"
	"github.com/botikaph/annotator-backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Annotator API is running",
		"version": "v1.0.0",
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, authService *service.AuthService, cfg *config.Config) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	// Submission rate limiting needs Redis; run without it when unavailable.
	var submissionLimiter *middleware.RateLimiter
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			logrus.WithError(err).Warn("failed to connect to Redis, rate limiting disabled")
		} else {
			submissionLimiter = middleware.NewSubmissionRateLimiter(redisClient)
		}
	}

	archive, err := config.NewS3Config(context.Background(), cfg.ExportBucket)
	if err != nil {
		logrus.WithError(err).Warn("failed to initialize S3 export archive")
		archive = nil
	}

	annotationService := service.NewAnnotationService(db)
	populationService := service.NewPopulationService(cfg.PopulationFile, annotationService)
	exportService := service.NewExportService(annotationService)

	authHandler := NewAuthHandler(authService)
	annotationHandler := NewAnnotationHandler(annotationService, populationService, exportService, archive, submissionLimiter)
	adminHandler := NewAdminHandler(authService)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	annotationHandler.RegisterRoutes(protected)
	adminHandler.RegisterRoutes(protected)
}
