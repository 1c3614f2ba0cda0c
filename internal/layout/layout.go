// Package layout computes 2D positions for a drawable element set. Each
// document group runs a layered directed-graph layout over its own items
// and intra-group edges, group boxes are packed into a near-square grid,
// and ungrouped items land on a fixed-pitch grid below. The engine is
// deterministic for identical input ordering and never blocks unbounded:
// every iterative step carries a fixed budget.
package layout

import "github.com/meulenbelt/tendergraph/internal/elements"

// Params holds the geometry constants for the engine.
type Params struct {
	NodeWidth  float64
	NodeHeight float64

	// Separation inside a group's layered layout.
	NodeGapX float64 // between siblings on one rank
	RankGapY float64 // between ranks

	// Group box framing.
	GroupPadding float64
	HeaderOffset float64 // extra room reserved for the group label
	GroupGapX    float64
	GroupGapY    float64

	// Orphan grid.
	OrphanColumns int
	OrphanPitchX  float64
	OrphanPitchY  float64

	// Iteration budget for crossing reduction.
	CrossingSweeps int
}

// DefaultParams returns the standard geometry.
func DefaultParams() Params {
	return Params{
		NodeWidth:      160,
		NodeHeight:     40,
		NodeGapX:       40,
		RankGapY:       70,
		GroupPadding:   30,
		HeaderOffset:   28,
		GroupGapX:      60,
		GroupGapY:      60,
		OrphanColumns:  4,
		OrphanPitchX:   200,
		OrphanPitchY:   80,
		CrossingSweeps: 4,
	}
}

// Engine computes positions for drawable element sets.
type Engine struct {
	params Params
}

// New creates an engine with the given geometry.
func New(params Params) *Engine {
	return &Engine{params: params}
}

// PositionedItem is an item with its absolute top-left corner and size.
type PositionedItem struct {
	Item *elements.Item
	X, Y float64
	W, H float64
}

// PositionedGroup is a group box with its absolute top-left corner and size.
type PositionedGroup struct {
	Group *elements.Group
	X, Y float64
	W, H float64
}

// Diagram is a fully positioned element set.
type Diagram struct {
	Groups []*PositionedGroup
	Items  []*PositionedItem // grouped items first, then orphans
	Edges  []*elements.Edge

	// Width and Height span the full content extent from origin (0,0).
	Width  float64
	Height float64

	byID map[string]*PositionedItem
}

// Item returns the positioned item for a node ID.
func (d *Diagram) Item(id string) (*PositionedItem, bool) {
	it, ok := d.byID[id]
	return it, ok
}

// Empty reports whether the diagram has nothing to draw.
func (d *Diagram) Empty() bool {
	return len(d.Items) == 0 && len(d.Groups) == 0
}
