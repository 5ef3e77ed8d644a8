package statistics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/productaccess"
	"github.com/mo-amir99/lms-progress-server/internal/features/productlesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/metrics"
)

// CatalogJob refreshes the lms_catalog_entities gauges.
type CatalogJob struct {
	db *gorm.DB
}

// NewCatalogJob builds the job over db.
func NewCatalogJob(db *gorm.DB) *CatalogJob {
	return &CatalogJob{db: db}
}

func (j *CatalogJob) Name() string { return "catalog-metrics" }

// Execute counts every entity and publishes the totals.
func (j *CatalogJob) Execute(ctx context.Context) error {
	sizes, err := CatalogSizes(j.db.WithContext(ctx))
	if err != nil {
		return err
	}
	for entity, count := range sizes {
		metrics.SetCatalogSize(entity, count)
	}
	return nil
}

// CatalogSizes returns row counts keyed by entity name. Soft deleted products are counted.
func CatalogSizes(db *gorm.DB) (map[string]int64, error) {
	entities := []struct {
		name  string
		model any
	}{
		{"users", &user.User{}},
		{"products", &product.Product{}},
		{"lessons", &lesson.Lesson{}},
		{"product_accesses", &productaccess.ProductAccess{}},
		{"product_lessons", &productlesson.ProductLesson{}},
		{"lesson_views", &lessonview.LessonView{}},
	}

	sizes := make(map[string]int64, len(entities))
	for _, entity := range entities {
		var count int64
		if err := db.Model(entity.model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", entity.name, err)
		}
		sizes[entity.name] = count
	}
	return sizes, nil
}
