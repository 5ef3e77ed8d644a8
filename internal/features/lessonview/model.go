package lessonview

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/lms-progress-server/internal/features/lesson"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/pkg/database"
	"github.com/mo-amir99/lms-progress-server/pkg/metrics"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

// LessonView records how long a user watched a lesson, in seconds.
type LessonView struct {
	types.BaseModel

	LessonID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_view_lesson_user;column:lesson_id" json:"lesson"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lesson_view_lesson_user;index;column:user_id" json:"user"`
	ViewDuration int       `gorm:"type:int;not null;default:0;column:view_duration;check:chk_lesson_views_view_duration,view_duration >= 0" json:"view_duration"`

	Lesson *lesson.Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	User   *user.User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (LessonView) TableName() string { return "lesson_views" }

// Response is the wire form of a view, carrying its derived status.
type Response struct {
	types.BaseModel

	LessonID     uuid.UUID        `json:"lesson"`
	UserID       uuid.UUID        `json:"user"`
	ViewDuration int              `json:"view_duration"`
	Status       types.ViewStatus `json:"status"`
}

// ToResponse derives the status against the lesson's duration.
func (v LessonView) ToResponse(lessonDuration int) Response {
	return Response{
		BaseModel:    v.BaseModel,
		LessonID:     v.LessonID,
		UserID:       v.UserID,
		ViewDuration: v.ViewDuration,
		Status:       Status(v.ViewDuration, lessonDuration),
	}
}

// OrderingFields maps public ordering names to columns.
var OrderingFields = map[string]string{
	"created":       "created_at",
	"view_duration": "view_duration",
}

// ListFilters defines view query filters.
type ListFilters struct {
	UserID   uuid.UUID
	LessonID *uuid.UUID
	Ordering string
}

// Input describes a new view.
type Input struct {
	LessonID     uuid.UUID
	UserID       uuid.UUID
	ViewDuration int
}

// UpdateInput captures mutable view fields.
type UpdateInput struct {
	LessonID     *uuid.UUID
	UserID       *uuid.UUID
	ViewDuration *int
}

// Mine limits views to those recorded for userID.
func Mine(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lesson_views.user_id = ?", userID)
	}
}

// List returns the caller's views with their derived status.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Response, int64, error) {
	query := db.Model(&LessonView{}).Scopes(Mine(filters.UserID))

	if filters.LessonID != nil {
		query = query.Where("lesson_id = ?", *filters.LessonID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	views := []LessonView{}
	err := query.
		Preload("Lesson").
		Order(pagination.Ordering(filters.Ordering, OrderingFields, "created")).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&views).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]Response, 0, len(views))
	for _, view := range views {
		out = append(out, view.ToResponse(lessonDuration(view)))
	}

	return out, total, nil
}

// Get retrieves one of the caller's views.
func Get(db *gorm.DB, userID, id uuid.UUID) (Response, error) {
	view, err := find(db.Preload("Lesson"), userID, id)
	if err != nil {
		return Response{}, err
	}
	return view.ToResponse(lessonDuration(view)), nil
}

// Create records a view after checking it against the lesson's duration.
// The check and the insert share one transaction.
func Create(db *gorm.DB, input Input) (Response, error) {
	view := LessonView{
		LessonID:     input.LessonID,
		UserID:       input.UserID,
		ViewDuration: input.ViewDuration,
	}

	var duration int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		duration, err = validate(tx, view)
		if err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&view).Error
	})
	if err != nil {
		return Response{}, database.TranslateError(err, duplicateMessage)
	}

	out := view.ToResponse(duration)
	metrics.RecordLessonView(string(out.Status))
	return out, nil
}

// Update changes one of the caller's views, re-validating the duration.
func Update(db *gorm.DB, userID, id uuid.UUID, input UpdateInput) (Response, error) {
	var (
		view     LessonView
		duration int
	)

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		view, err = find(tx, userID, id)
		if err != nil {
			return err
		}

		if input.LessonID != nil {
			view.LessonID = *input.LessonID
		}
		if input.UserID != nil {
			view.UserID = *input.UserID
		}
		if input.ViewDuration != nil {
			view.ViewDuration = *input.ViewDuration
		}

		duration, err = validate(tx, view)
		if err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(&view).Error
	})
	if err != nil {
		return Response{}, database.TranslateError(err, duplicateMessage)
	}

	out := view.ToResponse(duration)
	metrics.RecordLessonView(string(out.Status))
	return out, nil
}

// Delete removes one of the caller's views.
func Delete(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Scopes(Mine(userID)).Delete(&LessonView{}, "lesson_views.id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrViewNotFound
	}
	return nil
}

func find(db *gorm.DB, userID, id uuid.UUID) (LessonView, error) {
	var view LessonView
	if err := db.Scopes(Mine(userID)).First(&view, "lesson_views.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, ErrViewNotFound
		}
		return view, err
	}
	return view, nil
}

// validate loads the lesson and returns its duration once the view fits in it.
func validate(tx *gorm.DB, view LessonView) (int, error) {
	if view.ViewDuration < 0 {
		return 0, ErrNegativeViewDuration
	}

	l, err := lesson.Get(tx, view.LessonID)
	if err != nil {
		if errors.Is(err, lesson.ErrLessonNotFound) {
			return 0, ErrLessonMissing
		}
		return 0, err
	}

	ok, err := user.Exists(tx, view.UserID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUserMissing
	}

	if view.ViewDuration > l.Duration {
		return 0, ErrViewExceedsDuration
	}

	return l.Duration, nil
}

func lessonDuration(view LessonView) int {
	if view.Lesson == nil {
		return 0
	}
	return view.Lesson.Duration
}
