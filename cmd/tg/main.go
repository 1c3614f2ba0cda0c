package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

var (
	apiURL     string
	apiToken   string
	jsonOutput bool
	noColor    bool

	graphClient client.GraphClient
)

func defaultAPIURL() string {
	if s := os.Getenv("TENDERGRAPH_API_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultAPIToken() string {
	return os.Getenv("TENDERGRAPH_API_TOKEN")
}

var rootCmd = &cobra.Command{
	Use:   "tg <command>",
	Short: "CLI client for the tendergraph service",
	Long: `tg renders and manages tender requirement graphs.

A graph is one project's extracted requirements (documents, signatures,
checkboxes, deadlines) plus the typed relationships between them. tg talks
to a tendergraph server over HTTP; run one with "tg serve".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		}
		graphClient = client.NewHTTPClient(apiURL, apiToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if graphClient != nil {
			graphClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "tendergraph server URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", defaultAPIToken(), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "graph", Title: "Graph:"},
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Graph
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(watchCmd)

	// Data
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(projectsCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
