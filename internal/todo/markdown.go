package todo

import (
	"fmt"
	"strings"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// Markdown renders the full to-do list as a markdown document: summary,
// critical items, the actionable queue, and every category with per-item
// blocking and deadline annotations.
func (g *Generator) Markdown() string {
	categories := g.Generate()
	summary := g.Summarize()

	var b strings.Builder
	b.WriteString("# Tender Requirements To-Do List\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total Items:** %d\n", summary.TotalItems)
	fmt.Fprintf(&b, "- **Completed:** %d (%.1f%%)\n", summary.CompletedItems, summary.CompletionPercentage)
	fmt.Fprintf(&b, "- **Critical Items:** %d (%d done)\n", summary.CriticalItems, summary.CriticalCompleted)
	fmt.Fprintf(&b, "- **Ready to Work On:** %d\n\n", summary.ActionableNow)

	if critical := g.Critical(); len(critical) > 0 {
		b.WriteString("## Critical Items (Must Complete)\n\n")
		for _, it := range critical {
			marker := "⚠️"
			if it.Status == model.StatusCompleted {
				marker = "✅"
			}
			fmt.Fprintf(&b, "- %s **%s**\n", marker, it.Title)
			if it.Description != "" {
				fmt.Fprintf(&b, "  - %s...\n", truncate(it.Description, 100))
			}
		}
		b.WriteString("\n")
	}

	if actionable := g.ActionableNow(); len(actionable) > 0 {
		b.WriteString("## Ready to Work On Now\n\n")
		if len(actionable) > 10 {
			actionable = actionable[:10]
		}
		for _, it := range actionable {
			fmt.Fprintf(&b, "- [ ] **%s** [%s]\n", it.Title, it.Priority)
			if it.SourceDocument != "" {
				fmt.Fprintf(&b, "  - Source: %s\n", it.SourceDocument)
			}
		}
		b.WriteString("\n")
	}

	for i := range categories {
		cat := &categories[i]
		fmt.Fprintf(&b, "## %s\n", cat.Name)
		fmt.Fprintf(&b, "*%d/%d completed (%.1f%%)*\n\n",
			cat.Completed(), len(cat.Items), cat.CompletionPercentage())

		for _, it := range cat.Items {
			checkbox := " "
			if it.Status == model.StatusCompleted {
				checkbox = "x"
			}
			marker := "⚪"
			switch it.Priority {
			case PriorityCritical:
				marker = "🔴"
			case PriorityHigh:
				marker = "🟡"
			}
			fmt.Fprintf(&b, "- [%s] %s %s\n", checkbox, marker, it.Title)

			if len(it.BlockedBy) > 0 {
				blockers := it.BlockedBy
				if len(blockers) > 3 {
					blockers = blockers[:3]
				}
				fmt.Fprintf(&b, "  - ⏸️ Blocked by: %s\n", strings.Join(blockers, ", "))
			}
			if it.Deadline != nil {
				fmt.Fprintf(&b, "  - 📅 Deadline: %s\n", it.Deadline.Format("2006-01-02"))
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
