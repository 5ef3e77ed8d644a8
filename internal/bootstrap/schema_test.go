package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/lms-progress-server/internal/bootstrap"
	"github.com/mo-amir99/lms-progress-server/internal/testutil"
	"github.com/mo-amir99/lms-progress-server/pkg/config"
	"github.com/mo-amir99/lms-progress-server/pkg/database/migrations"
	"github.com/mo-amir99/lms-progress-server/pkg/logger"
)

func TestApplyDatabaseMigrationsRecordsVersionOnce(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{Database: config.DatabaseConfig{RunMigrations: true}}

	require.NoError(t, bootstrap.ApplyDatabaseMigrations(db, cfg, logger.NewNop()))
	require.NoError(t, bootstrap.ApplyDatabaseMigrations(db, cfg, logger.NewNop()))

	var records []migrations.Record
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, "create_progress_schema", records[0].Name)
}

func TestApplyDatabaseMigrationsDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{}

	require.NoError(t, bootstrap.ApplyDatabaseMigrations(db, cfg, logger.NewNop()))
	assert.False(t, db.Migrator().HasTable(&migrations.Record{}))
}
