package statistics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/metrics"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

// ProductStatistics summarises engagement with one product.
type ProductStatistics struct {
	ProductID          uuid.UUID `gorm:"column:product_id" json:"product_id"`
	ProductName        string    `gorm:"column:product_name" json:"product_name"`
	ViewedLessonsCount int64     `gorm:"column:viewed_lessons_count" json:"viewed_lessons_count"`
	TotalViewTime      int64     `gorm:"column:total_view_time" json:"total_view_time"`
	StudentsCount      int64     `gorm:"column:students_count" json:"students_count"`
	PurchasePercentage float64   `gorm:"-" json:"purchase_percentage"`
}

// Filters narrows the aggregation.
type Filters struct {
	OwnerID *uuid.UUID
}

// A view is counted once per product even when the lesson is linked to it twice.
const viewedPerProduct = `
SELECT d.product_id, COUNT(*) AS viewed_lessons_count, SUM(d.view_duration) AS total_view_time
FROM (
	SELECT DISTINCT pl.product_id, lv.id, lv.view_duration
	FROM product_lessons pl
	JOIN lessons l ON l.id = pl.lesson_id
	JOIN lesson_views lv ON lv.lesson_id = l.id
	WHERE ` + lessonview.ViewedCondition + `
) d
GROUP BY d.product_id`

const studentsPerProduct = `
SELECT product_id, COUNT(DISTINCT user_id) AS students_count
FROM product_accesses
GROUP BY product_id`

// Compute returns one row per product, soft deleted ones included,
// newest first.
func Compute(db *gorm.DB, filters Filters) ([]ProductStatistics, error) {
	start := time.Now()
	defer func() { metrics.ObserveStatistics(time.Since(start)) }()

	query := `
SELECT p.id AS product_id,
	p.name AS product_name,
	COALESCE(v.viewed_lessons_count, 0) AS viewed_lessons_count,
	COALESCE(v.total_view_time, 0) AS total_view_time,
	COALESCE(s.students_count, 0) AS students_count
FROM products p
LEFT JOIN (` + viewedPerProduct + `) v ON v.product_id = p.id
LEFT JOIN (` + studentsPerProduct + `) s ON s.product_id = p.id`

	args := []interface{}{}
	if filters.OwnerID != nil {
		query += "\nWHERE p.owner_id = ?"
		args = append(args, *filters.OwnerID)
	}
	query += "\nORDER BY p.created_at DESC, p.id ASC"

	rows := []ProductStatistics{}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	totalUsers, err := user.Count(db)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].PurchasePercentage = types.Percentage(rows[i].StudentsCount, totalUsers)
	}

	return rows, nil
}
