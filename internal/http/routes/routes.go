package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/auth"
	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/productaccess"
	"github.com/mo-amir99/lms-progress-server/internal/features/productlesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/statistics"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/internal/middleware"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/health"
	"github.com/mo-amir99/lms-progress-server/pkg/metrics"
)

// Register wires all feature routes onto the engine. redis may be nil.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, redis health.Pinger) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, redis, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	engine.GET("/metrics", metrics.Handler())

	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	authMiddleware := middleware.NewAuthMiddleware(db, cfg.JWTSecret, logger)
	requireAuth := authMiddleware.RequireAuth()

	authHandler := auth.NewHandler(db, logger, cfg)
	auth.RegisterRoutes(api, authHandler, requireAuth)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(api, userHandler, requireAuth)

	statisticsHandler := statistics.NewHandler(db, logger)
	statistics.RegisterRoutes(api, statisticsHandler, requireAuth)

	productHandler := product.NewHandler(db, logger)
	product.RegisterRoutes(api, productHandler, requireAuth)

	productAccessHandler := productaccess.NewHandler(db, logger)
	productaccess.RegisterRoutes(api, productAccessHandler, requireAuth)

	lessonHandler := lesson.NewHandler(db, logger)
	lesson.RegisterRoutes(api, lessonHandler, requireAuth)

	productLessonHandler := productlesson.NewHandler(db, logger)
	productlesson.RegisterRoutes(api, productLessonHandler, requireAuth)

	lessonViewHandler := lessonview.NewHandler(db, logger)
	lessonview.RegisterRoutes(api, lessonViewHandler, requireAuth)
}
