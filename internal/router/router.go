package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/botikaph/annotator-backend/config"
	"github.com/botikaph/annotator-backend/internal/api"
	"github.com/botikaph/annotator-backend/internal/middleware"
	"github.com/botikaph/annotator-backend/internal/service"
)

// SetupRouter configures the application routes
func SetupRouter(db *gorm.DB, authService *service.AuthService, cfg *config.Config) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	api.RegisterRoutes(router, db, authService, cfg)

	return router
}
