package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/internal/features/user"
)

// EnsureUser creates the account when missing, or resets its password and
// reactivates it when present.
func EnsureUser(db *gorm.DB, logger *slog.Logger, input user.CreateInput) (user.User, error) {
	existing, err := user.GetByUsername(db, input.Username)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		created, createErr := user.Create(db, input)
		if createErr != nil {
			return user.User{}, fmt.Errorf("create user: %w", createErr)
		}
		logger.Info("user created", slog.String("username", created.Username))
		return created, nil

	case err != nil:
		return user.User{}, fmt.Errorf("get user: %w", err)
	}

	if !existing.ComparePassword(input.Password) {
		existing, err = user.Update(db, existing.ID, user.UpdateInput{Password: &input.Password})
		if err != nil {
			return user.User{}, fmt.Errorf("update user password: %w", err)
		}
	}

	if !existing.Active {
		existing.Active = true
		if err := db.Save(&existing).Error; err != nil {
			return user.User{}, fmt.Errorf("activate user: %w", err)
		}
	}

	logger.Info("user synchronized", slog.String("username", existing.Username))
	return existing, nil
}
