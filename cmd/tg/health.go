package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check whether the server is reachable",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := graphClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}

		if jsonOutput {
			printJSON(map[string]string{"status": status})
			return nil
		}
		fmt.Printf("server %s: %s\n", apiURL, status)
		return nil
	},
}
