// Package todo derives prioritized, actionable to-do lists from a project's
// requirement graph. Items are categorized by node type, priority is inferred
// from content and dependency fan-in, and blocked/actionable states follow the
// dependency edges (requires, depends_on, conditional_on).
package todo

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// Priority ranks how badly an item needs attention. Lower is more urgent.
type Priority int

const (
	PriorityCritical Priority = 1 // missing means disqualification
	PriorityHigh     Priority = 2
	PriorityMedium   Priority = 3
	PriorityLow      Priority = 4
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the priority as its name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Item is a single actionable to-do entry derived from one graph node.
type Item struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       Priority     `json:"priority"`
	Status         model.Status `json:"status"`
	Category       string       `json:"category"`
	SourceDocument string       `json:"source_document,omitempty"`
	Deadline       *time.Time   `json:"deadline,omitempty"`
	BlockedBy      []string     `json:"blocked_by,omitempty"`
	Blocks         []string     `json:"blocks,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
}

// Category groups related to-do items.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Completed counts the category's completed items.
func (c *Category) Completed() int {
	n := 0
	for _, it := range c.Items {
		if it.Status == model.StatusCompleted {
			n++
		}
	}
	return n
}

// CompletionPercentage is the category's completed share, rounded to one
// decimal. An empty category counts as fully complete.
func (c *Category) CompletionPercentage() float64 {
	if len(c.Items) == 0 {
		return 100.0
	}
	return round1(float64(c.Completed()) / float64(len(c.Items)) * 100)
}

// CategorySummary is the per-category slice of a Summary.
type CategorySummary struct {
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// Summary condenses the full to-do list into headline numbers.
type Summary struct {
	TotalItems           int               `json:"total_items"`
	CompletedItems       int               `json:"completed_items"`
	CompletionPercentage float64           `json:"completion_percentage"`
	CriticalItems        int               `json:"critical_items"`
	CriticalCompleted    int               `json:"critical_completed"`
	ActionableNow        int               `json:"actionable_now"`
	Categories           []CategorySummary `json:"categories"`
}

// criticalKeywords flag exclusion-grade requirements in German tender
// documents. Matched as lowercase substrings of title+description+source text.
var criticalKeywords = []string{
	"ausschluss", "zwingend", "muss", "pflicht", "erforderlich",
	"unbedingt", "ausgeschlossen", "nicht berücksichtigt",
	"fehlen", "mangel", "ungültig", "disqualif",
}

// categoryNames maps node types to their to-do category.
var categoryNames = map[model.NodeType]string{
	model.TypeDocument:    "Documents to Submit",
	model.TypeSignature:   "Signatures Required",
	model.TypeCheckbox:    "Checkboxes to Complete",
	model.TypeField:       "Fields to Fill",
	model.TypeAttachment:  "Attachments to Include",
	model.TypeRequirement: "Requirements to Meet",
	model.TypeDeadline:    "Deadlines to Track",
	model.TypeCondition:   "Conditions to Evaluate",
}

// categoryOrder is the display order of categories, most submission-critical
// first.
var categoryOrder = []string{
	"Documents to Submit",
	"Signatures Required",
	"Checkboxes to Complete",
	"Fields to Fill",
	"Attachments to Include",
	"Requirements to Meet",
	"Deadlines to Track",
	"Conditions to Evaluate",
	"Other",
}

// dependencyEdge reports whether the edge type expresses a hard dependency
// for blocking purposes.
func dependencyEdge(t model.EdgeType) bool {
	switch t {
	case model.EdgeDependsOn, model.EdgeRequires, model.EdgeConditionalOn:
		return true
	}
	return false
}

// Generator derives to-do lists from one project's nodes and edges.
type Generator struct {
	nodes []*model.Node
	byID  map[string]*model.Node

	// dependency adjacency, both endpoints resolved
	deps       map[string][]*model.Node // node -> nodes it depends on
	dependents map[string][]*model.Node // node -> nodes depending on it
}

// NewGenerator indexes the graph for to-do derivation. Dependency edges with
// a missing endpoint are ignored.
func NewGenerator(nodes []*model.Node, edges []*model.Edge) *Generator {
	g := &Generator{
		nodes:      nodes,
		byID:       make(map[string]*model.Node, len(nodes)),
		deps:       make(map[string][]*model.Node),
		dependents: make(map[string][]*model.Node),
	}
	for _, n := range nodes {
		g.byID[n.ID] = n
	}
	for _, e := range edges {
		if !dependencyEdge(e.Type) {
			continue
		}
		src, ok := g.byID[e.SourceNodeID]
		if !ok {
			continue
		}
		dst, ok := g.byID[e.TargetNodeID]
		if !ok {
			continue
		}
		g.deps[src.ID] = append(g.deps[src.ID], dst)
		g.dependents[dst.ID] = append(g.dependents[dst.ID], src)
	}
	return g
}

// depSatisfied reports whether a dependency in this status no longer blocks.
func depSatisfied(s model.Status) bool {
	return s == model.StatusCompleted || s == model.StatusNotApplicable
}

// priority infers an item's priority from its text, type, and fan-in.
func (g *Generator) priority(n *model.Node) Priority {
	text := strings.ToLower(n.Title + n.Description + n.SourceText)
	for _, kw := range criticalKeywords {
		if strings.Contains(text, kw) {
			return PriorityCritical
		}
	}

	switch n.Type {
	case model.TypeSignature, model.TypeDeadline:
		return PriorityCritical
	case model.TypeDocument:
		return PriorityHigh
	}

	// Anything gating three or more other items is high priority.
	if len(g.dependents[n.ID]) >= 3 {
		return PriorityHigh
	}

	return PriorityMedium
}

// item converts a node into a to-do entry.
func (g *Generator) item(n *model.Node) Item {
	var blockedBy, blocks []string
	for _, dep := range g.deps[n.ID] {
		if !depSatisfied(dep.Status) {
			blockedBy = append(blockedBy, dep.Title)
		}
	}
	for _, dep := range g.dependents[n.ID] {
		if !depSatisfied(dep.Status) {
			blocks = append(blocks, dep.Title)
		}
	}

	category, ok := categoryNames[n.Type]
	if !ok {
		category = "Other"
	}

	return Item{
		ID:             n.ID,
		Title:          n.Title,
		Description:    n.Description,
		Priority:       g.priority(n),
		Status:         n.Status,
		Category:       category,
		SourceDocument: n.DocumentName(),
		Deadline:       n.Deadline,
		BlockedBy:      blockedBy,
		Blocks:         blocks,
		Tags:           n.Tags,
	}
}

// Generate produces the full to-do list organized by category. Items within a
// category are ordered by priority, then title; informational not-applicable
// conditions are omitted.
func (g *Generator) Generate() []Category {
	byName := make(map[string]*Category)

	for _, n := range g.nodes {
		if n.Type == model.TypeCondition && n.Status == model.StatusNotApplicable {
			continue
		}

		it := g.item(n)
		cat, ok := byName[it.Category]
		if !ok {
			cat = &Category{
				Name:        it.Category,
				Description: "Items of type: " + n.Type.String(),
			}
			byName[it.Category] = cat
		}
		cat.Items = append(cat.Items, it)
	}

	for _, cat := range byName {
		items := cat.Items
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Priority != items[j].Priority {
				return items[i].Priority < items[j].Priority
			}
			return items[i].Title < items[j].Title
		})
	}

	out := make([]Category, 0, len(byName))
	for _, name := range categoryOrder {
		if cat, ok := byName[name]; ok {
			out = append(out, *cat)
		}
	}
	return out
}

// ActionableNow returns the items that can be worked on immediately: not yet
// done and with every dependency satisfied. Ordered by priority, then title.
func (g *Generator) ActionableNow() []Item {
	var out []Item
	for _, n := range g.nodes {
		if n.Status != model.StatusNotStarted && n.Status != model.StatusInProgress {
			continue
		}
		it := g.item(n)
		if len(it.BlockedBy) > 0 {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Critical returns every critical-priority item that still applies, ordered
// by title.
func (g *Generator) Critical() []Item {
	var out []Item
	for _, n := range g.nodes {
		if n.Status == model.StatusNotApplicable {
			continue
		}
		if g.priority(n) != PriorityCritical {
			continue
		}
		out = append(out, g.item(n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out
}

// ByDeadline returns unfinished items carrying a deadline, earliest first.
func (g *Generator) ByDeadline() []Item {
	var out []Item
	for _, n := range g.nodes {
		if n.Deadline == nil || n.Status == model.StatusCompleted {
			continue
		}
		out = append(out, g.item(n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deadline.Before(*out[j].Deadline)
	})
	return out
}

// Summarize condenses the list into headline numbers.
func (g *Generator) Summarize() Summary {
	categories := g.Generate()

	s := Summary{Categories: make([]CategorySummary, 0, len(categories))}
	for i := range categories {
		cat := &categories[i]
		s.TotalItems += len(cat.Items)
		s.CompletedItems += cat.Completed()
		s.Categories = append(s.Categories, CategorySummary{
			Name:       cat.Name,
			Total:      len(cat.Items),
			Completed:  cat.Completed(),
			Percentage: cat.CompletionPercentage(),
		})
	}

	if s.TotalItems > 0 {
		s.CompletionPercentage = round1(float64(s.CompletedItems) / float64(s.TotalItems) * 100)
	} else {
		s.CompletionPercentage = 100.0
	}

	for _, it := range g.Critical() {
		s.CriticalItems++
		if it.Status == model.StatusCompleted {
			s.CriticalCompleted++
		}
	}
	s.ActionableNow = len(g.ActionableNow())

	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
