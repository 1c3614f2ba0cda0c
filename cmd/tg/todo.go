package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meulenbelt/tendergraph/internal/todo"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

var todoCmd = &cobra.Command{
	Use:     "todo <project>",
	Short:   "Derive a prioritized to-do list from a project's graph",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		markdown, _ := cmd.Flags().GetBool("markdown")
		actionable, _ := cmd.Flags().GetBool("actionable")

		resp, err := graphClient.FetchGraph(context.Background(), project)
		if err != nil {
			return fmt.Errorf("fetch graph: %w", err)
		}
		gen := todo.NewGenerator(resp.Nodes, resp.Edges)

		switch {
		case markdown:
			fmt.Print(gen.Markdown())
		case jsonOutput:
			printJSON(map[string]any{
				"summary":    gen.Summarize(),
				"categories": gen.Generate(),
			})
		case actionable:
			printTodoItems(gen.ActionableNow())
		default:
			printTodoSummary(gen)
		}
		return nil
	},
}

func printTodoSummary(gen *todo.Generator) {
	sum := gen.Summarize()
	fmt.Printf("Total items:    %d\n", sum.TotalItems)
	fmt.Printf("Completed:      %d (%.1f%%)\n", sum.CompletedItems, sum.CompletionPercentage)
	fmt.Printf("Critical:       %d (%d done)\n", sum.CriticalItems, sum.CriticalCompleted)
	fmt.Printf("Actionable now: %d\n", sum.ActionableNow)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tDONE\tTOTAL\t%")
	for _, c := range sum.Categories {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\n", c.Name, c.Completed, c.Total, c.Percentage)
	}
	w.Flush()
}

func printTodoItems(items []todo.Item) {
	if len(items) == 0 {
		fmt.Println("Nothing is actionable right now.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tSTATUS\tTITLE\tSOURCE")
	for _, it := range items {
		title := it.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			it.ID,
			it.Priority,
			ui.RenderStatus(it.Status),
			title,
			it.SourceDocument,
		)
	}
	w.Flush()
	fmt.Printf("\n%d items\n", len(items))
}

func init() {
	todoCmd.Flags().Bool("markdown", false, "print the full checklist as markdown")
	todoCmd.Flags().Bool("actionable", false, "list only items ready to work on")
}
