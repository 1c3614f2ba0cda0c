package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/snapshot"
)

var exportCmd = &cobra.Command{
	Use:     "export <project>",
	Short:   "Dump a project's full graph",
	GroupID: "data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		outPath, _ := cmd.Flags().GetString("out")
		jsonl, _ := cmd.Flags().GetBool("jsonl")

		resp, err := graphClient.ExportGraph(context.Background(), project)
		if err != nil {
			return fmt.Errorf("export graph: %w", err)
		}

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if jsonl {
			if err := snapshot.EncodeJSONL(resp.ProjectID, resp.Nodes, resp.Edges, out); err != nil {
				return fmt.Errorf("encode jsonl: %w", err)
			}
		} else {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
		}

		if outPath != "" {
			fmt.Fprintf(os.Stderr, "exported %d nodes, %d edges to %s\n", len(resp.Nodes), len(resp.Edges), outPath)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "write the dump to this file instead of stdout")
	exportCmd.Flags().Bool("jsonl", false, "write the line-delimited snapshot format")
}
