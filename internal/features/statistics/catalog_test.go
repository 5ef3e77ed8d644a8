package statistics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/features/lessonview"
	"github.com/mo-amir99/lms-progress-server/internal/features/statistics"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
)

func TestCatalogSizes(t *testing.T) {
	db := testutil.NewDB(t)

	owner := testutil.CreateUser(t, db, "owner")
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, owner.ID, "Course")
	l := testutil.CreateLesson(t, db, "Intro", 60)
	testutil.Link(t, db, p.ID, l.ID)
	testutil.Grant(t, db, p.ID, student.ID)
	_, err := lessonview.Create(db, lessonview.Input{LessonID: l.ID, UserID: student.ID, ViewDuration: 30})
	require.NoError(t, err)

	sizes, err := statistics.CatalogSizes(db)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"users":            2,
		"products":         1,
		"lessons":          1,
		"product_accesses": 1,
		"product_lessons":  1,
		"lesson_views":     1,
	}, sizes)

	assert.NoError(t, statistics.NewCatalogJob(db).Execute(context.Background()))
}
