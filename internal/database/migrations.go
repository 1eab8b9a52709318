package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/sprint-tracker/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by startup hydration and sprint lookups
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		name    string
		columns string
	}{
		// Task indexes for hydration order and sprint filtering
		{&models.Task{}, "idx_tasks_created_at", "created_at"},
		{&models.Task{}, "idx_tasks_sprint_id", "sprint_id"},
		{&models.Task{}, "idx_tasks_due_date", "due_date"},

		// Sprint indexes
		{&models.Sprint{}, "idx_sprints_status", "status"},
		{&models.Sprint{}, "idx_sprints_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("Index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to resolve table for index %s: %w", idx.name, err)
		}
		table := stmt.Schema.Table

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", slog.String("index", idx.name), slog.String("table", table), slog.String("columns", idx.columns))
	}

	return nil
}
