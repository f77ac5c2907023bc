package database

import (
	"testing"

	"edushare/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite", ""} {
		d, err := dialectorFor(driver, "dsn")
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}
	_, err := dialectorFor("oracle", "dsn")
	assert.Error(t, err)
}

func TestAutoMigrateSQLite(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: "file:migrate_test?mode=memory&cache=shared", MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"users", "conversations", "messages", "conversation_hides", "notifications", "payments", "resources", "resource_feedback", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
