package bootstrap

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/productaccess"
	"github.com/mo-amir99/lms-progress-server/internal/features/productlesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/database/migrations"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&product.Product{},
		&productaccess.ProductAccess{},
		&lesson.Lesson{},
		&productlesson.ProductLesson{},
		&lessonview.LessonView{},
	}
}

// Schema changes get a new version; applied versions never rerun.
func init() {
	migrations.Register(migrations.Migration{
		Version: 1,
		Name:    "create_progress_schema",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(Models()...)
		},
	})
}

// ApplyDatabaseMigrations brings the schema up to date unless
// LMS_DB_RUN_MIGRATIONS is false.
func ApplyDatabaseMigrations(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("schema migrations skipped", slog.String("env_var", "LMS_DB_RUN_MIGRATIONS=false"))
		return nil
	}

	if err := migrations.Run(db, logger); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
