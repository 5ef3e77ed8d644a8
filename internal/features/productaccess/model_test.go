package productaccess_test

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/features/product"
	"github.com/mo-amir99/lms-progress-server/internal/features/productaccess"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/apperrors"
	"github.com/mo-amir99/lms-progress-server/pkg/pagination"
)

func TestDuplicateGrantConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")

	testutil.Grant(t, db, p.ID, student.ID)

	_, err := productaccess.Create(db, productaccess.Input{ProductID: p.ID, UserID: student.ID})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode())
}

func TestConcurrentDuplicateGrantsStoreOne(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := productaccess.Create(db, productaccess.Input{ProductID: p.ID, UserID: student.ID})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.Is(err, apperrors.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	var stored int64
	require.NoError(t, db.Model(&productaccess.ProductAccess{}).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}

func TestCreateChecksReferences(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")

	_, err := productaccess.Create(db, productaccess.Input{ProductID: uuid.New(), UserID: student.ID})
	assert.ErrorIs(t, err, productaccess.ErrProductMissing)

	_, err = productaccess.Create(db, productaccess.Input{ProductID: p.ID, UserID: uuid.New()})
	assert.ErrorIs(t, err, productaccess.ErrUserMissing)
}

func TestListIsSelfScoped(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	first := testutil.CreateProduct(t, db, alice.ID, "First")
	second := testutil.CreateProduct(t, db, alice.ID, "Second")

	testutil.Grant(t, db, first.ID, alice.ID)
	testutil.Grant(t, db, second.ID, alice.ID)
	bobs := testutil.Grant(t, db, first.ID, bob.ID)

	accesses, total, err := productaccess.List(db, productaccess.ListFilters{UserID: alice.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, a := range accesses {
		assert.Equal(t, alice.ID, a.UserID)
	}

	_, err = productaccess.Get(db, alice.ID, bobs.ID)
	assert.ErrorIs(t, err, productaccess.ErrAccessNotFound)
	assert.ErrorIs(t, productaccess.Delete(db, alice.ID, bobs.ID), productaccess.ErrAccessNotFound)

	filtered, total, err := productaccess.List(db, productaccess.ListFilters{UserID: alice.ID, ProductID: &second.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, second.ID, filtered[0].ProductID)
}

func TestUpdateIntoExistingPairConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	first := testutil.CreateProduct(t, db, student.ID, "First")
	second := testutil.CreateProduct(t, db, student.ID, "Second")

	testutil.Grant(t, db, first.ID, student.ID)
	moving := testutil.Grant(t, db, second.ID, student.ID)

	_, err := productaccess.Update(db, student.ID, moving.ID, productaccess.UpdateInput{ProductID: &first.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	stored, err := productaccess.Get(db, student.ID, moving.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.ProductID)
}

func TestGrantSurvivesProductSoftDelete(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "student")
	p := testutil.CreateProduct(t, db, student.ID, "Course")
	testutil.Grant(t, db, p.ID, student.ID)

	require.NoError(t, product.SoftDelete(db, student.ID, p.ID))

	_, total, err := productaccess.List(db, productaccess.ListFilters{UserID: student.ID, ProductID: &p.ID}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
