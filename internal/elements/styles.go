package elements

import (
	"strings"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// Label truncation bounds, in runes.
const (
	maxGroupLabel = 35
	maxItemLabel  = 30
	ellipsis      = "..."
)

// Glyphs appended to item labels. Statuses not listed render bare.
var statusGlyphs = map[model.Status]string{
	model.StatusCompleted:  "✓",
	model.StatusInProgress: "◐",
	model.StatusBlocked:    "⊘",
}

// DefaultEdgeColor is the stroke used for unknown relationship types.
const DefaultEdgeColor = "#8b949e"

var edgeColors = map[model.EdgeType]string{
	model.EdgeRequires:          "#d73a49",
	model.EdgeRequiredBy:        "#f66a0a",
	model.EdgeConditionalOn:     "#6f42c1",
	model.EdgeTriggers:          "#28a745",
	model.EdgePartOf:            "#0366d6",
	model.EdgeReferences:        "#8b949e",
	model.EdgeMutuallyExclusive: "#b31d28",
	model.EdgeDependsOn:         "#e36209",
}

// Weak, informational relationships draw dashed.
var dashedEdgeTypes = map[model.EdgeType]struct{}{
	model.EdgeConditionalOn: {},
	model.EdgeReferences:    {},
}

// Node colors by item type, shared by the renderers and the legend.
var (
	typeFills = map[model.NodeType]string{
		model.TypeDocument:    "#e1f5fe",
		model.TypeRequirement: "#fff3e0",
		model.TypeField:       "#f3e5f5",
		model.TypeCheckbox:    "#e8f5e9",
		model.TypeSignature:   "#ffebee",
		model.TypeCondition:   "#fffde7",
		model.TypeDeadline:    "#fce4ec",
		model.TypeAttachment:  "#e0f2f1",
	}

	typeStrokes = map[model.NodeType]string{
		model.TypeDocument:    "#01579b",
		model.TypeRequirement: "#e65100",
		model.TypeField:       "#7b1fa2",
		model.TypeCheckbox:    "#2e7d32",
		model.TypeSignature:   "#c62828",
		model.TypeCondition:   "#f57f17",
		model.TypeDeadline:    "#ad1457",
		model.TypeAttachment:  "#00695c",
	}
)

// TypeFill returns the fill color for an item type. Unknown types fall back
// to the requirement palette.
func TypeFill(t model.NodeType) string {
	if c, ok := typeFills[t]; ok {
		return c
	}
	return typeFills[model.TypeRequirement]
}

// TypeStroke returns the border color for an item type.
func TypeStroke(t model.NodeType) string {
	if c, ok := typeStrokes[t]; ok {
		return c
	}
	return typeStrokes[model.TypeRequirement]
}

// OverrideStyles merges custom fills and strokes over the built-in
// palette. Applied once at startup, before any rendering.
func OverrideStyles(fills, strokes map[model.NodeType]string) {
	for t, c := range fills {
		typeFills[t] = c
	}
	for t, c := range strokes {
		typeStrokes[t] = c
	}
}

// EdgeColor returns the stroke color for a relationship type.
func EdgeColor(t model.EdgeType) string {
	if c, ok := edgeColors[t]; ok {
		return c
	}
	return DefaultEdgeColor
}

// EdgeDashed reports whether a relationship type draws with a dashed stroke.
func EdgeDashed(t model.EdgeType) bool {
	_, ok := dashedEdgeTypes[t]
	return ok
}

// StatusGlyph returns the glyph for a status, or "" when the status has none.
func StatusGlyph(s model.Status) string {
	return statusGlyphs[s]
}

// Truncate shortens s to max runes, appending an ellipsis marker when it cuts.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + ellipsis
}

// ItemLabel renders a node title with its status glyph.
func ItemLabel(title string, status model.Status) string {
	label := Truncate(title, maxItemLabel)
	if glyph, ok := statusGlyphs[status]; ok {
		return label + " " + glyph
	}
	return label
}

// GroupLabel renders a document filename as a group header.
func GroupLabel(filename string) string {
	return Truncate(filename, maxGroupLabel)
}

// EdgeLabel renders a relationship type for display ("conditional_on" ->
// "conditional on").
func EdgeLabel(t model.EdgeType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
