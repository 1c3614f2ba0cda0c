package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printNodeTable(node *model.Node) {
	fmt.Printf("ID:          %s\n", node.ID)
	fmt.Printf("Type:        %s\n", node.Type)
	fmt.Printf("Title:       %s\n", node.Title)
	fmt.Printf("Status:      %s\n", ui.RenderStatus(node.Status))
	if node.Description != "" {
		fmt.Printf("Description: %s\n", node.Description)
	}
	if node.Notes != "" {
		fmt.Printf("Notes:       %s\n", node.Notes)
	}
	if name := node.DocumentName(); name != "" {
		fmt.Printf("Document:    %s\n", name)
	}
	if node.Deadline != nil {
		fmt.Printf("Deadline:    %s\n", node.Deadline.Format("2006-01-02"))
	}
	if len(node.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(node.Tags, ", "))
	}
	fmt.Printf("Updated At:  %s\n", node.UpdatedAt.Format("2006-01-02 15:04:05"))
}

// statusOrder fixes the display order of the per-status breakdown.
var statusOrder = []model.Status{
	model.StatusNotStarted,
	model.StatusInProgress,
	model.StatusCompleted,
	model.StatusNotApplicable,
	model.StatusBlocked,
}

func printStatsTable(project string, stats *model.GraphStats) {
	fmt.Printf("Project:     %s\n", project)
	fmt.Printf("Total nodes: %d\n", stats.TotalNodes)
	fmt.Printf("Applicable:  %d\n", stats.ApplicableItems)
	fmt.Printf("Completed:   %d (%.1f%%)\n", stats.CompletedItems, stats.CompletionPercentage)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, st := range statusOrder {
		fmt.Fprintf(w, "%s\t%d\n", ui.RenderStatus(st), stats.ByStatus[st])
	}
	w.Flush()
}

func printNodeListTable(nodes []*model.Node) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tTITLE\tUPDATED")
	for _, n := range nodes {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			ui.RenderStatus(n.Status),
			n.Type,
			title,
			n.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
}

func printProjectsTable(projects []string) {
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return
	}
	for _, p := range projects {
		fmt.Println(p)
	}
	fmt.Printf("\n%d projects\n", len(projects))
}
