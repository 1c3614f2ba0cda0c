package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status <project>",
	Short:   "Show completion statistics for a project",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]

		stats, err := graphClient.Stats(context.Background(), project)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}
		printStatsTable(project, stats)
		return nil
	},
}
