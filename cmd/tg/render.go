package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meulenbelt/tendergraph/internal/canvas"
	"github.com/meulenbelt/tendergraph/internal/config"
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:     "render <project>",
	Short:   "Render a project's graph as SVG, HTML or terminal art",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		themePath, _ := cmd.Flags().GetString("theme")
		legend, _ := cmd.Flags().GetBool("legend")

		params := layout.DefaultParams()
		if themePath != "" {
			theme, err := config.LoadTheme(themePath)
			if err != nil {
				return fmt.Errorf("load theme: %w", err)
			}
			params = theme.Params()
			elements.OverrideStyles(theme.NodeStyles())
		}

		resp, err := graphClient.FetchGraph(context.Background(), project)
		if err != nil {
			return fmt.Errorf("fetch graph: %w", err)
		}

		set := elements.Build(resp.Nodes, resp.Edges)
		diagram := layout.New(params).Layout(set)

		switch format {
		case "svg":
			return writeRendered(outPath, canvas.SVG(diagram))
		case "html":
			data, err := canvas.HTML(diagram, project)
			if err != nil {
				return fmt.Errorf("render html: %w", err)
			}
			return writeRendered(outPath, data)
		case "term":
			cols, rows := termCanvasSize()
			for _, line := range canvas.Term(diagram, cols, rows, ui.ShouldUseColor(), legend) {
				fmt.Println(line)
			}
			return nil
		default:
			return fmt.Errorf("unknown format %q (want svg, html or term)", format)
		}
	},
}

func writeRendered(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

// termCanvasSize returns the character grid for a static terminal render:
// the current terminal minus one row for the shell prompt, or 100x30 when
// stdout is not a terminal.
func termCanvasSize() (cols, rows int) {
	cols, rows = 100, 30
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if c, r, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cols, rows = c, r-1
		}
	}
	if rows < 10 {
		rows = 10
	}
	return cols, rows
}

func init() {
	renderCmd.Flags().String("format", "svg", "output format: svg, html or term")
	renderCmd.Flags().String("out", "", "write output to this file instead of stdout")
	renderCmd.Flags().String("theme", "", "path to a TOML theme file")
	renderCmd.Flags().Bool("legend", false, "include the node-type legend")
}
