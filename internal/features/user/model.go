package user

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/database"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
	"github.com/mo-amir99/lms-progress-server/pkg/validation"
)

const bcryptCost = 10

// User is an account that can own products, hold access and record views.
type User struct {
	types.BaseModel

	Username     string  `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email        string  `gorm:"type:varchar(254);not null;default:''" json:"email"`
	FirstName    string  `gorm:"type:varchar(150);not null;default:'';column:first_name" json:"first_name"`
	LastName     string  `gorm:"type:varchar(150);not null;default:'';column:last_name" json:"last_name"`
	Password     string  `gorm:"type:varchar(255);not null" json:"-"`
	RefreshToken *string `gorm:"type:text;column:refresh_token" json:"-"`
	Active       bool    `gorm:"not null;default:true;column:is_active" json:"is_active"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// CreateInput carries data for creating a new user.
type CreateInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// UpdateInput captures mutable profile fields.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var user User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// GetByUsername retrieves a user by exact username.
func GetByUsername(db *gorm.DB, username string) (User, error) {
	var user User
	if err := db.First(&user, "username = ?", strings.TrimSpace(username)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// Exists reports whether a user with id is stored.
func Exists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of registered users.
func Count(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&User{}).Count(&total).Error
	return total, err
}

// Create inserts a new user with hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	username, err := validation.NormalizeUsername(input.Username)
	if err != nil {
		return User{}, ErrInvalidUsername
	}

	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Password:  string(hashedPassword),
		Active:    true,
	}

	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, apperrors.Conflict("A user with that username already exists.", ErrUsernameTaken)
		}
		return User{}, err
	}

	return user, nil
}

// Update modifies a user's profile.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	user, err := Get(db, id)
	if err != nil {
		return user, err
	}

	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return user, err
		}
		user.Email = email
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}

	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return user, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return user, err
		}
		user.Password = string(hashedPassword)
		// Changing the password ends existing sessions.
		user.RefreshToken = nil
	}

	if err := db.Save(&user).Error; err != nil {
		return user, err
	}

	return user, nil
}

// SetRefreshToken stores (or clears, with nil) the current refresh token.
func SetRefreshToken(db *gorm.DB, id uuid.UUID, token *string) error {
	result := db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"refresh_token": token,
		"updated_at":    types.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ComparePassword checks if the provided password matches the user's hashed password.
func (u *User) ComparePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func normalizeEmail(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}
