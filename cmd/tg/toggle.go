package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle <project> <node-id>",
	Short:   "Toggle a node between not started and completed",
	GroupID: "data",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, nodeID := args[0], args[1]
		ctx := context.Background()

		node, err := graphClient.GetNode(ctx, project, nodeID)
		if err != nil {
			return fmt.Errorf("fetch node: %w", err)
		}

		next, ok := node.Status.Toggled()
		if !ok {
			return fmt.Errorf("node %s is %s; only completed and not_started toggle", nodeID, node.Status)
		}

		updated, err := graphClient.UpdateNode(ctx, project, nodeID, &client.UpdateNodeRequest{
			Status: &next,
		})
		if err != nil {
			return fmt.Errorf("update node: %w", err)
		}

		if jsonOutput {
			printJSON(updated)
			return nil
		}
		fmt.Printf("%s: %s -> %s\n", updated.ID, ui.RenderStatus(node.Status), ui.RenderStatus(updated.Status))
		return nil
	},
}
