package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/bootstrap"
	"github.com/mo-amir99/lms-progress-server/internal/features/user"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/logger"
)

func TestEnsureUserCreatesThenSynchronizes(t *testing.T) {
	db := testutil.NewDB(t)
	log := logger.NewNop()

	created, err := bootstrap.EnsureUser(db, log, user.CreateInput{Username: "admin", Password: "first-password"})
	require.NoError(t, err)
	assert.True(t, created.ComparePassword("first-password"))

	require.NoError(t, db.Model(&user.User{}).Where("id = ?", created.ID).Update("is_active", false).Error)
	deactivated, err := user.Get(db, created.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	synced, err := bootstrap.EnsureUser(db, log, user.CreateInput{Username: "admin", Password: "second-password"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, synced.ID)
	assert.True(t, synced.Active)

	stored, err := user.Get(db, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.ComparePassword("second-password"))
	assert.True(t, stored.Active)

	total, err := user.Count(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
