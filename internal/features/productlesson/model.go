package productlesson

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

// ProductLesson links a lesson into a product. The same pair may be linked twice.
type ProductLesson struct {
	types.BaseModel

	ProductID uuid.UUID `gorm:"type:uuid;not null;index;column:product_id" json:"product"`
	LessonID  uuid.UUID `gorm:"type:uuid;not null;index;column:lesson_id" json:"lesson"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Lesson  *lesson.Lesson   `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (ProductLesson) TableName() string { return "product_lessons" }

// OrderingFields maps public ordering names to columns.
var OrderingFields = map[string]string{
	"created": "created_at",
	"product": "product_id",
	"lesson":  "lesson_id",
}

// ListFilters defines link query filters.
type ListFilters struct {
	UserID    uuid.UUID
	ProductID *uuid.UUID
	LessonID  *uuid.UUID
	Ordering  string
}

// Input carries the two sides of a link.
type Input struct {
	ProductID uuid.UUID
	LessonID  uuid.UUID
}

// UpdateInput captures mutable link fields.
type UpdateInput struct {
	ProductID *uuid.UUID
	LessonID  *uuid.UUID
}

// VisibleTo limits links to products userID holds access to.
func VisibleTo(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("product_lessons.product_id IN (SELECT pa.product_id FROM product_accesses pa WHERE pa.user_id = ?)", userID)
	}
}

// List returns links visible to the user.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]ProductLesson, int64, error) {
	query := db.Model(&ProductLesson{}).Scopes(VisibleTo(filters.UserID))

	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}
	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	links := []ProductLesson{}
	err := query.
		Order(pagination.Ordering(filters.Ordering, OrderingFields, "created")).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&links).Error

	return links, total, err
}

// Get retrieves a link visible to userID.
func Get(db *gorm.DB, userID, id uuid.UUID) (ProductLesson, error) {
	var link ProductLesson
	if err := db.Scopes(VisibleTo(userID)).First(&link, "product_lessons.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return link, ErrLinkNotFound
		}
		return link, err
	}
	return link, nil
}

// Create links a lesson into a product. Both rows must exist.
func Create(db *gorm.DB, input Input) (ProductLesson, error) {
	link := ProductLesson{ProductID: input.ProductID, LessonID: input.LessonID}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureReferences(tx, link.ProductID, link.LessonID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&link).Error
	})
	if err != nil {
		return ProductLesson{}, err
	}

	return link, nil
}

// Update repoints a visible link.
func Update(db *gorm.DB, userID, id uuid.UUID, input UpdateInput) (ProductLesson, error) {
	var link ProductLesson

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		link, err = Get(tx, userID, id)
		if err != nil {
			return err
		}

		if input.ProductID != nil {
			link.ProductID = *input.ProductID
		}
		if input.LessonID != nil {
			link.LessonID = *input.LessonID
		}

		if err := ensureReferences(tx, link.ProductID, link.LessonID); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(&link).Error
	})

	return link, err
}

// Delete removes a visible link.
func Delete(db *gorm.DB, userID, id uuid.UUID) error {
	if _, err := Get(db, userID, id); err != nil {
		return err
	}

	result := db.Delete(&ProductLesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func ensureReferences(db *gorm.DB, productID, lessonID uuid.UUID) error {
	ok, err := product.Exists(db, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductMissing
	}

	ok, err = lesson.Exists(db, lessonID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLessonMissing
	}

	return nil
}
