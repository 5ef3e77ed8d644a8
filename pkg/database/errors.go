package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err was raised by a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return true
	}

	// glebarez/sqlite does not expose a typed error for this.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// TranslateError turns a unique index violation into a 409 AppError carrying
// message. Any other error is returned unchanged.
func TranslateError(err error, message string) error {
	if IsUniqueViolation(err) {
		return apperrors.Conflict(message, err)
	}
	return err
}
