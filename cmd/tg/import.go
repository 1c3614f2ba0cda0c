package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/snapshot"
)

var importCmd = &cobra.Command{
	Use:     "import <project> <file>",
	Short:   "Load a graph dump into a project",
	GroupID: "data",
	Long: `Import reads a graph dump and loads it into a project. Two formats
are accepted and detected from the content: a JSON object with "nodes"
and "edges" arrays, or the line-delimited snapshot format produced by
"tg export --jsonl". Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, path := args[0], args[1]
		replace, _ := cmd.Flags().GetBool("replace")

		data, err := readImportFile(path)
		if err != nil {
			return err
		}

		nodes, edges, err := parseGraphDump(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		resp, err := graphClient.ImportGraph(context.Background(), project, &client.ImportRequest{
			Nodes:   nodes,
			Edges:   edges,
			Replace: replace,
		})
		if err != nil {
			return fmt.Errorf("import graph: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}
		fmt.Printf("imported %d nodes, %d edges into %s\n", resp.NodesImported, resp.EdgesImported, project)
		return nil
	},
}

func readImportFile(path string) ([]byte, error) {
	if path == "-" {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(os.Stdin); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return buf.Bytes(), nil
	}
	return os.ReadFile(path)
}

// parseGraphDump sniffs the dump format: a leading "{" with a top-level
// nodes or edges key is the JSON object form, anything else is treated as
// the JSONL snapshot stream.
func parseGraphDump(data []byte) ([]*model.Node, []*model.Edge, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty input")
	}

	if trimmed[0] == '{' {
		var dump struct {
			Nodes []*model.Node `json:"nodes"`
			Edges []*model.Edge `json:"edges"`
		}
		if err := json.Unmarshal(trimmed, &dump); err == nil && (dump.Nodes != nil || dump.Edges != nil) {
			return dump.Nodes, dump.Edges, nil
		}
	}
	return snapshot.ParseJSONL(bytes.NewReader(trimmed))
}

func init() {
	importCmd.Flags().Bool("replace", false, "delete the project's existing graph first")
}
