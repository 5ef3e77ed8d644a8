package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: product_accesses.product_id, product_accesses.user_id (2067)")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("FOREIGN KEY constraint failed")))
}

func TestTranslateError(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, TranslateError(plain, "duplicate"))
	assert.NoError(t, TranslateError(nil, "duplicate"))

	err := TranslateError(gorm.ErrDuplicatedKey, "duplicate")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode())
	assert.Equal(t, apperrors.ErrConflict, appErr.Code())
	assert.Equal(t, "duplicate", appErr.Message())
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(gorm.ErrRecordNotFound))
	assert.True(t, IsConnectionError(driver.ErrBadConn))
	assert.True(t, IsConnectionError(fmt.Errorf("query: %w", sql.ErrConnDone)))
	assert.True(t, IsConnectionError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")))
	assert.False(t, IsConnectionError(errors.New("UNIQUE constraint failed")))
}
