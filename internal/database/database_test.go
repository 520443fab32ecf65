package database

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(&config.Config{DatabaseURL: "sqlite://:memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	assert.NoError(t, Ping(db))

	for _, table := range []any{&models.Content{}, &models.Report{}, &models.Vote{}, &models.SystemLog{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestConnectRejectsUnknownScheme(t *testing.T) {
	_, err := Connect(&config.Config{DatabaseURL: "mysql://localhost/db"})
	assert.Error(t, err)
}
