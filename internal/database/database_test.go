package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker/internal/config"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, SQLitePath: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrate_SQLiteIsIdempotent(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: ":memory:", GinMode: "release"}
	require.NoError(t, Connect(cfg))
	sqlDB, err := GetDB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, Migrate())
	require.NoError(t, Migrate())

	assert.True(t, GetDB().Migrator().HasIndex(&models.Task{}, "idx_tasks_sprint_id"))
}
