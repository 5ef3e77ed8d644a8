package types

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(3, -1))
	assert.Equal(t, 0.0, Percentage(0, 10))
	assert.Equal(t, 25.0, Percentage(1, 4))
	assert.Equal(t, 100.0, Percentage(7, 7))
	assert.InDelta(t, 33.3333, Percentage(1, 3), 0.0001)
}

func TestHooksKeepCreated(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	original := Now
	t.Cleanup(func() { Now = original })

	Now = func() time.Time { return first }
	var m BaseModel
	require.NoError(t, m.BeforeSave(nil))
	require.NoError(t, m.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, first, m.CreatedAt)
	assert.Equal(t, first, m.UpdatedAt)

	id := m.ID
	Now = func() time.Time { return later }
	require.NoError(t, m.BeforeSave(nil))
	assert.Equal(t, id, m.ID)
	assert.Equal(t, first, m.CreatedAt)
	assert.Equal(t, later, m.UpdatedAt)
}

func TestBeforeSaveLeavesBlankKeyZero(t *testing.T) {
	var m BaseModel
	require.NoError(t, m.BeforeSave(nil))
	assert.Equal(t, uuid.Nil, m.ID)
	assert.True(t, m.CreatedAt.IsZero())
}

func TestViewStatusLabel(t *testing.T) {
	assert.Equal(t, "Viewed", ViewStatusViewed.Label())
	assert.Equal(t, "Not viewed", ViewStatusNotViewed.Label())
}
