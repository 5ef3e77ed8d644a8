package productlesson_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/features/productlesson"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
)

func TestCreateChecksReferences(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	p := testutil.CreateProduct(t, db, owner.ID, "Course")
	l := testutil.CreateLesson(t, db, "Intro", 60)

	_, err := productlesson.Create(db, productlesson.Input{ProductID: uuid.New(), LessonID: l.ID})
	assert.ErrorIs(t, err, productlesson.ErrProductMissing)

	_, err = productlesson.Create(db, productlesson.Input{ProductID: p.ID, LessonID: uuid.New()})
	assert.ErrorIs(t, err, productlesson.ErrLessonMissing)

	var count int64
	require.NoError(t, db.Model(&productlesson.ProductLesson{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDuplicateLinksAreAllowed(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	p := testutil.CreateProduct(t, db, owner.ID, "Course")
	l := testutil.CreateLesson(t, db, "Intro", 60)

	first := testutil.Link(t, db, p.ID, l.ID)
	second := testutil.Link(t, db, p.ID, l.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestVisibilityFollowsAccess(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	student := testutil.CreateUser(t, db, "student")

	granted := testutil.CreateProduct(t, db, owner.ID, "Granted")
	hidden := testutil.CreateProduct(t, db, owner.ID, "Hidden")
	l := testutil.CreateLesson(t, db, "Intro", 60)

	visible := testutil.Link(t, db, granted.ID, l.ID)
	invisible := testutil.Link(t, db, hidden.ID, l.ID)
	testutil.Grant(t, db, granted.ID, student.ID)

	links, total, err := productlesson.List(db, productlesson.ListFilters{UserID: student.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, links, 1)
	assert.Equal(t, visible.ID, links[0].ID)

	_, err = productlesson.Get(db, student.ID, invisible.ID)
	assert.ErrorIs(t, err, productlesson.ErrLinkNotFound)

	assert.ErrorIs(t, productlesson.Delete(db, student.ID, invisible.ID), productlesson.ErrLinkNotFound)

	// The owner holds no access row, so sees nothing either.
	_, total, err = productlesson.List(db, productlesson.ListFilters{UserID: owner.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateRepointsLink(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")
	first := testutil.CreateLesson(t, db, "First", 60)
	second := testutil.CreateLesson(t, db, "Second", 60)
	link := testutil.Link(t, db, p.ID, first.ID)
	testutil.Grant(t, db, p.ID, student.ID)

	updated, err := productlesson.Update(db, student.ID, link.ID, productlesson.UpdateInput{LessonID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.LessonID)
	assert.Equal(t, p.ID, updated.ProductID)

	missing := uuid.New()
	_, err = productlesson.Update(db, student.ID, link.ID, productlesson.UpdateInput{LessonID: &missing})
	assert.ErrorIs(t, err, productlesson.ErrLessonMissing)

	stored, err := productlesson.Get(db, student.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.LessonID)

	require.NoError(t, productlesson.Delete(db, student.ID, link.ID))
	_, err = productlesson.Get(db, student.ID, link.ID)
	assert.ErrorIs(t, err, productlesson.ErrLinkNotFound)
}
