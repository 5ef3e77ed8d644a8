// Package testutil provides a migrated in-memory database and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mo-amir99/lms-progress-server/internal/bootstrap"
	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/productaccess"
	"github.com/mo-amir99/lms-progress-server/internal/features/productlesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
)

// NewDB opens an isolated in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection serialises writers like a real server would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(bootstrap.Models()...))
	return db
}

// CreateUser stores a user with password "password123".
func CreateUser(t testing.TB, db *gorm.DB, username string) user.User {
	t.Helper()

	u, err := user.Create(db, user.CreateInput{Username: username, Password: "password123"})
	require.NoError(t, err)
	return u
}

// CreateProduct stores a product owned by ownerID.
func CreateProduct(t testing.TB, db *gorm.DB, ownerID uuid.UUID, name string) product.Product {
	t.Helper()

	p, err := product.Create(db, ownerID, name)
	require.NoError(t, err)
	return p
}

// CreateLesson stores a lesson of the given duration in seconds.
func CreateLesson(t testing.TB, db *gorm.DB, title string, duration int) lesson.Lesson {
	t.Helper()

	l, err := lesson.Create(db, lesson.CreateInput{
		Title:    title,
		VideoURL: "https://videos.example.com/" + uuid.NewString(),
		Duration: duration,
	})
	require.NoError(t, err)
	return l
}

// Link attaches lessonID to productID.
func Link(t testing.TB, db *gorm.DB, productID, lessonID uuid.UUID) productlesson.ProductLesson {
	t.Helper()

	link, err := productlesson.Create(db, productlesson.Input{ProductID: productID, LessonID: lessonID})
	require.NoError(t, err)
	return link
}

// Grant gives userID access to productID.
func Grant(t testing.TB, db *gorm.DB, productID, userID uuid.UUID) productaccess.ProductAccess {
	t.Helper()

	access, err := productaccess.Create(db, productaccess.Input{ProductID: productID, UserID: userID})
	require.NoError(t, err)
	return access
}
