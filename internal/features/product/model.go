package product

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

const maxNameLength = 255

// Product is a sellable course bundle owned by one user.
// Deletion is logical: the row stays and IsDeleted is set.
type Product struct {
	types.BaseModel

	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id" json:"owner"`
	IsDeleted bool      `gorm:"not null;default:false;column:is_deleted;index" json:"-"`

	Owner *user.User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (Product) TableName() string { return "products" }

// OrderingFields maps public ordering names to columns.
var OrderingFields = map[string]string{
	"name":    "name",
	"created": "created_at",
}

// ListFilters defines product query filters.
type ListFilters struct {
	OwnerID  uuid.UUID
	Search   string
	Name     string
	Ordering string
}

// UpdateInput captures mutable product fields.
type UpdateInput struct {
	Name *string
}

// Owned scopes a query to the products of ownerID.
func Owned(ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("products.owner_id = ?", ownerID)
	}
}

// NotDeleted hides soft deleted products.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_deleted = ?", false)
}

// List returns the owner's live products.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Product, int64, error) {
	query := db.Model(&Product{}).Scopes(Owned(filters.OwnerID), NotDeleted)

	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Scopes(pagination.Contains("name", search))
	}

	if name := strings.TrimSpace(filters.Name); name != "" {
		query = query.Where("name = ?", name)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []Product{}
	err := query.
		Order(pagination.Ordering(filters.Ordering, OrderingFields, "name")).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&products).Error

	return products, total, err
}

// Get retrieves one of the owner's products, soft deleted ones included.
func Get(db *gorm.DB, ownerID, id uuid.UUID) (Product, error) {
	var product Product
	if err := db.Scopes(Owned(ownerID)).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return product, ErrProductNotFound
		}
		return product, err
	}
	return product, nil
}

// Exists reports whether a product row with id is stored.
func Exists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a product owned by ownerID.
func Create(db *gorm.DB, ownerID uuid.UUID, name string) (Product, error) {
	trimmed, err := normalizeName(name)
	if err != nil {
		return Product{}, err
	}

	product := Product{Name: trimmed, OwnerID: ownerID}
	if err := db.Create(&product).Error; err != nil {
		return Product{}, err
	}

	return product, nil
}

// Update modifies one of the owner's products.
func Update(db *gorm.DB, ownerID, id uuid.UUID, input UpdateInput) (Product, error) {
	product, err := Get(db, ownerID, id)
	if err != nil {
		return product, err
	}

	if input.Name != nil {
		trimmed, err := normalizeName(*input.Name)
		if err != nil {
			return product, err
		}
		product.Name = trimmed
	}

	if err := db.Save(&product).Error; err != nil {
		return product, err
	}

	return product, nil
}

// SoftDelete flags one of the owner's products as deleted.
func SoftDelete(db *gorm.DB, ownerID, id uuid.UUID) error {
	product, err := Get(db, ownerID, id)
	if err != nil {
		return err
	}

	if product.IsDeleted {
		return nil
	}

	product.IsDeleted = true
	return db.Save(&product).Error
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", ErrNameTooLong
	}
	return trimmed, nil
}
