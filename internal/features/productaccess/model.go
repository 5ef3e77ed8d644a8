package productaccess

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/database"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

// ProductAccess grants a user access to a product. A pair is stored at most once.
type ProductAccess struct {
	types.BaseModel

	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_access_product_user;column:product_id" json:"product"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_access_product_user;index;column:user_id" json:"user"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	User    *user.User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (ProductAccess) TableName() string { return "product_accesses" }

// OrderingFields maps public ordering names to columns.
var OrderingFields = map[string]string{
	"product": "product_id",
	"created": "created_at",
}

// ListFilters defines access query filters.
type ListFilters struct {
	UserID    uuid.UUID
	ProductID *uuid.UUID
	Ordering  string
}

// Input describes a new grant.
type Input struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
}

// UpdateInput captures mutable grant fields.
type UpdateInput struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
}

// Mine limits grants to those held by userID.
func Mine(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("product_accesses.user_id = ?", userID)
	}
}

// List returns the caller's grants.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]ProductAccess, int64, error) {
	query := db.Model(&ProductAccess{}).Scopes(Mine(filters.UserID))

	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	accesses := []ProductAccess{}
	err := query.
		Order(pagination.Ordering(filters.Ordering, OrderingFields, "product")).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&accesses).Error

	return accesses, total, err
}

// Get retrieves one of the caller's grants.
func Get(db *gorm.DB, userID, id uuid.UUID) (ProductAccess, error) {
	var access ProductAccess
	if err := db.Scopes(Mine(userID)).First(&access, "product_accesses.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access, ErrAccessNotFound
		}
		return access, err
	}
	return access, nil
}

// Create stores a grant. A second grant for the same pair yields a conflict.
func Create(db *gorm.DB, input Input) (ProductAccess, error) {
	access := ProductAccess{ProductID: input.ProductID, UserID: input.UserID}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureReferences(tx, access.ProductID, access.UserID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&access).Error
	})
	if err != nil {
		return ProductAccess{}, database.TranslateError(err, duplicateMessage)
	}

	return access, nil
}

// Update repoints one of the caller's grants.
func Update(db *gorm.DB, userID, id uuid.UUID, input UpdateInput) (ProductAccess, error) {
	var access ProductAccess

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		access, err = Get(tx, userID, id)
		if err != nil {
			return err
		}

		if input.ProductID != nil {
			access.ProductID = *input.ProductID
		}
		if input.UserID != nil {
			access.UserID = *input.UserID
		}

		if err := ensureReferences(tx, access.ProductID, access.UserID); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(&access).Error
	})
	if err != nil {
		return access, database.TranslateError(err, duplicateMessage)
	}

	return access, nil
}

// Delete revokes one of the caller's grants.
func Delete(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Scopes(Mine(userID)).Delete(&ProductAccess{}, "product_accesses.id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccessNotFound
	}
	return nil
}

func ensureReferences(db *gorm.DB, productID, userID uuid.UUID) error {
	ok, err := product.Exists(db, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductMissing
	}

	ok, err = user.Exists(db, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserMissing
	}

	return nil
}
