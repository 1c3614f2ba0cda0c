package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/canvas"
	"github.com/meulenbelt/tendergraph/internal/config"
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
)

var viewCmd = &cobra.Command{
	Use:     "view <project>",
	Short:   "Open an interactive terminal canvas for a project",
	GroupID: "graph",
	Long: `View opens a full-screen canvas showing the project's requirement
graph. The view fetches live data from the server and lets you walk the
graph and toggle completion without leaving the terminal.

Keys:
  arrows, hjkl   pan
  + / -          zoom in / out
  f, r, 0        fit the whole graph
  F              toggle header and footer
  L              toggle the legend
  tab, n / p     select next / previous node
  enter, space   toggle the selected node's completion
  g              reload from the server
  esc            clear the selection
  q, ctrl-c      quit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		themePath, _ := cmd.Flags().GetString("theme")

		params := layout.DefaultParams()
		if themePath != "" {
			theme, err := config.LoadTheme(themePath)
			if err != nil {
				return fmt.Errorf("load theme: %w", err)
			}
			params = theme.Params()
			elements.OverrideStyles(theme.NodeStyles())
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Raw mode owns the terminal; route session logs nowhere rather
		// than over the canvas.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		sess := canvas.NewSession(graphClient, project, params, logger)
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().String("theme", "", "path to a TOML theme file")
}
