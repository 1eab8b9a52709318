package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "sprint-tracker",
		Short:         "Task and sprint tracker with due-date alarms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())

	if err := root.Execute(); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
