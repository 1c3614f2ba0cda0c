// Package canvas renders positioned diagrams and drives the interactive
// terminal view. All output adapters consume the same layout: a Renderer
// draws one element at a time, and Draw walks a diagram in z-order so
// group boxes sit under edges and edges under node boxes.
package canvas

import (
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
)

// nodeTypeOrder fixes the legend row order across adapters.
var nodeTypeOrder = []model.NodeType{
	model.TypeDocument,
	model.TypeRequirement,
	model.TypeCondition,
	model.TypeCheckbox,
	model.TypeSignature,
	model.TypeField,
	model.TypeAttachment,
	model.TypeDeadline,
}

// Renderer is the drawing surface behind every output format. Terminal,
// SVG, and HTML adapters implement it over the one layout engine.
type Renderer interface {
	GroupBox(g *layout.PositionedGroup)
	Edge(e *elements.Edge, from, to *layout.PositionedItem)
	Node(it *layout.PositionedItem)
}

// Draw paints the diagram onto r: group boxes, then edges, then nodes.
// Edges whose endpoints are missing from the diagram are skipped.
func Draw(r Renderer, d *layout.Diagram) {
	for _, g := range d.Groups {
		r.GroupBox(g)
	}
	for _, e := range d.Edges {
		from, ok := d.Item(e.Source)
		if !ok {
			continue
		}
		to, ok := d.Item(e.Target)
		if !ok {
			continue
		}
		r.Edge(e, from, to)
	}
	for _, it := range d.Items {
		r.Node(it)
	}
}
