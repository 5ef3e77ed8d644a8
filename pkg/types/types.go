package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ViewStatus is the derived completion state of a lesson view.
type ViewStatus string

const (
	ViewStatusViewed    ViewStatus = "viewed"
	ViewStatusNotViewed ViewStatus = "not_viewed"
)

// Label returns the human readable form of the status.
func (s ViewStatus) Label() string {
	switch s {
	case ViewStatusViewed:
		return "Viewed"
	case ViewStatusNotViewed:
		return "Not viewed"
	default:
		return string(s)
	}
}

// Now is the clock used when stamping records. Tests may replace it.
var Now = func() time.Time { return time.Now().UTC() }

// BaseModel contains common fields for all models.
//
// Timestamps are owned by the hooks below rather than gorm's automatic
// tracking: created is set once, updated on every save.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated"`
}

// BeforeSave refreshes the update time. It never touches the ID: a blank
// model used as the target of a column update must keep its zero key.
func (m *BaseModel) BeforeSave(tx *gorm.DB) error {
	m.UpdatedAt = Now()
	return nil
}

// BeforeCreate assigns identity and the creation time. gorm runs it after
// BeforeSave, so a new row starts with created == updated.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.UpdatedAt
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = Now()
		m.UpdatedAt = m.CreatedAt
	}
	return nil
}

// Percentage returns part*100/whole as a float, or 0 when whole is not positive.
func Percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		InexactFloat64()
}
