package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "List all projects known to the server",
	GroupID: "data",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := graphClient.ListProjects(context.Background())
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		if jsonOutput {
			printJSON(projects)
			return nil
		}
		printProjectsTable(projects)
		return nil
	},
}
