package lesson

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

const (
	maxTitleLength    = 255
	maxVideoURLLength = 200
)

// Lesson is a single video unit. Duration is in seconds.
type Lesson struct {
	types.BaseModel

	Title    string `gorm:"type:varchar(255);not null;index" json:"title"`
	VideoURL string `gorm:"type:varchar(200);not null;column:video_url" json:"video_url"`
	Duration int    `gorm:"type:int;not null;default:0;check:chk_lessons_duration,duration >= 0" json:"duration"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// OrderingFields maps public ordering names to columns.
var OrderingFields = map[string]string{
	"title":   "title",
	"created": "created_at",
}

// ListFilters defines lesson query filters.
type ListFilters struct {
	UserID   uuid.UUID
	Search   string
	Title    string
	Ordering string
}

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	Title    string
	VideoURL string
	Duration int
}

// UpdateInput captures mutable lesson fields.
type UpdateInput struct {
	Title    *string
	VideoURL *string
	Duration *int
}

// AccessibleTo limits lessons to those linked to a product userID holds access to.
// EXISTS keeps each lesson once however many products grant it.
func AccessibleTo(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`EXISTS (
			SELECT 1 FROM product_lessons pl
			JOIN product_accesses pa ON pa.product_id = pl.product_id
			WHERE pl.lesson_id = lessons.id AND pa.user_id = ?
		)`, userID)
	}
}

// List returns the lessons the user can see.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Lesson, int64, error) {
	query := db.Model(&Lesson{}).Scopes(AccessibleTo(filters.UserID))

	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Scopes(pagination.Contains("title", search))
	}

	if title := strings.TrimSpace(filters.Title); title != "" {
		query = query.Where("title = ?", title)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	lessons := []Lesson{}
	err := query.
		Order(pagination.Ordering(filters.Ordering, OrderingFields, "title")).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&lessons).Error

	return lessons, total, err
}

// GetForUser retrieves a lesson visible to userID.
func GetForUser(db *gorm.DB, userID, id uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.Scopes(AccessibleTo(userID)).First(&lesson, "lessons.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// Get retrieves a lesson by ID without access filtering.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// Exists reports whether a lesson with id is stored.
func Exists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&Lesson{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new lesson.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return Lesson{}, err
	}

	videoURL, err := normalizeVideoURL(input.VideoURL)
	if err != nil {
		return Lesson{}, err
	}

	if input.Duration < 0 {
		return Lesson{}, ErrDurationInvalid
	}

	lesson := Lesson{
		Title:    title,
		VideoURL: videoURL,
		Duration: input.Duration,
	}

	if err := db.Create(&lesson).Error; err != nil {
		return Lesson{}, err
	}

	return lesson, nil
}

// Update modifies a lesson visible to userID.
func Update(db *gorm.DB, userID, id uuid.UUID, input UpdateInput) (Lesson, error) {
	lesson, err := GetForUser(db, userID, id)
	if err != nil {
		return lesson, err
	}

	if input.Title != nil {
		title, err := normalizeTitle(*input.Title)
		if err != nil {
			return lesson, err
		}
		lesson.Title = title
	}

	if input.VideoURL != nil {
		videoURL, err := normalizeVideoURL(*input.VideoURL)
		if err != nil {
			return lesson, err
		}
		lesson.VideoURL = videoURL
	}

	if input.Duration != nil {
		if *input.Duration < 0 {
			return lesson, ErrDurationInvalid
		}
		lesson.Duration = *input.Duration
	}

	if err := db.Save(&lesson).Error; err != nil {
		return lesson, err
	}

	return lesson, nil
}

// Delete removes a lesson visible to userID. Links and views cascade.
func Delete(db *gorm.DB, userID, id uuid.UUID) error {
	if _, err := GetForUser(db, userID, id); err != nil {
		return err
	}

	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

func normalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(trimmed) > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

func normalizeVideoURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxVideoURLLength {
		return "", ErrVideoURLInvalid
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", ErrVideoURLInvalid
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return trimmed, nil
	default:
		return "", ErrVideoURLInvalid
	}
}
