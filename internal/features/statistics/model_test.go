package statistics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/statistics"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/types"
)

// steppedClock makes creation order deterministic.
func steppedClock(t *testing.T) {
	t.Helper()

	original := types.Now
	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	types.Now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { types.Now = original })
}

func TestComputeCountsViewedLessons(t *testing.T) {
	steppedClock(t)
	db := testutil.NewDB(t)

	owner := testutil.CreateUser(t, db, "owner")
	student := testutil.CreateUser(t, db, "student")
	testutil.CreateUser(t, db, "bystander")
	testutil.CreateUser(t, db, "lurker")

	p := testutil.CreateProduct(t, db, owner.ID, "Course")
	for i, watched := range []int{90, 50, 100} {
		l := testutil.CreateLesson(t, db, fmt.Sprintf("Lesson %d", i), 100)
		testutil.Link(t, db, p.ID, l.ID)
		_, err := lessonview.Create(db, lessonview.Input{LessonID: l.ID, UserID: student.ID, ViewDuration: watched})
		require.NoError(t, err)
	}
	testutil.Grant(t, db, p.ID, student.ID)

	rows, err := statistics.Compute(db, statistics.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, p.ID, row.ProductID)
	assert.Equal(t, "Course", row.ProductName)
	assert.Equal(t, int64(2), row.ViewedLessonsCount)
	assert.Equal(t, int64(190), row.TotalViewTime)
	assert.Equal(t, int64(1), row.StudentsCount)
	assert.Equal(t, 25.0, row.PurchasePercentage)
}

func TestComputeCountsDuplicateLinksOnce(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")
	l := testutil.CreateLesson(t, db, "Intro", 100)

	testutil.Link(t, db, p.ID, l.ID)
	testutil.Link(t, db, p.ID, l.ID)
	_, err := lessonview.Create(db, lessonview.Input{LessonID: l.ID, UserID: student.ID, ViewDuration: 100})
	require.NoError(t, err)

	rows, err := statistics.Compute(db, statistics.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ViewedLessonsCount)
	assert.Equal(t, int64(100), rows[0].TotalViewTime)
}

func TestComputeWithoutAccessIsZero(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	for i := 0; i < 9; i++ {
		testutil.CreateUser(t, db, fmt.Sprintf("user%d", i))
	}
	testutil.CreateProduct(t, db, owner.ID, "Unsold")

	rows, err := statistics.Compute(db, statistics.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].ViewedLessonsCount)
	assert.Zero(t, rows[0].TotalViewTime)
	assert.Zero(t, rows[0].StudentsCount)
	assert.Equal(t, 0.0, rows[0].PurchasePercentage)
}

func TestComputeIncludesSoftDeletedNewestFirst(t *testing.T) {
	steppedClock(t)
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")

	older := testutil.CreateProduct(t, db, owner.ID, "Older")
	newer := testutil.CreateProduct(t, db, other.ID, "Newer")
	require.NoError(t, product.SoftDelete(db, owner.ID, older.ID))

	rows, err := statistics.Compute(db, statistics.Filters{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ProductID)
	assert.Equal(t, older.ID, rows[1].ProductID)

	owned, err := statistics.Compute(db, statistics.Filters{OwnerID: &owner.ID})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, older.ID, owned[0].ProductID)
}

func TestComputeWithNoProducts(t *testing.T) {
	db := testutil.NewDB(t)

	rows, err := statistics.Compute(db, statistics.Filters{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
