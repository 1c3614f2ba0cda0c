// Package elements converts raw node and edge records into the drawable
// element set: synthesized per-document groups, labeled items, and styled
// edges. Build is a pure function of its inputs; integrity gaps in the data
// (edges with a missing endpoint, document references without a filename)
// are dropped silently rather than surfaced.
package elements

import "github.com/meulenbelt/tendergraph/internal/model"

// Item is one drawable node.
type Item struct {
	ID      string
	Label   string
	Type    model.NodeType
	Status  model.Status
	GroupID string // owning group ID, "" for orphans
	Node    *model.Node
}

// SetStatus updates the item's status and recomputes its display label.
// Size and position are untouched; callers restyle in place.
func (it *Item) SetStatus(status model.Status) {
	it.Status = status
	it.Label = ItemLabel(it.Node.Title, status)
}

// Group bundles the items extracted from one source document.
type Group struct {
	ID    string // document ID
	Label string
	Items []*Item
}

// Edge is a renderable relationship with stroke style resolved from its type.
type Edge struct {
	ID     string
	Source string
	Target string
	Type   model.EdgeType
	Label  string
	Color  string
	Dashed bool
}

// Set is the complete drawable-element set for one graph payload.
type Set struct {
	Groups  []*Group // first-encounter order
	Orphans []*Item  // input order
	Edges   []*Edge  // input order, admitted only

	items map[string]*Item
}

// Build derives the drawable element set from raw records.
//
// Groups are synthesized per distinct document ID: the first node seen with
// a joined filename for that document names the group, and every node
// carrying the document ID joins it, even nodes whose own filename join is
// missing. Nodes whose document has no known filename anywhere in the input
// are orphans. Edges are kept iff both endpoints resolve to kept nodes.
func Build(nodes []*model.Node, edges []*model.Edge) *Set {
	s := &Set{items: make(map[string]*Item, len(nodes))}

	// First pass: discover groups in input order.
	groups := make(map[string]*Group)
	for _, n := range nodes {
		if n.DocumentID == "" || n.DocumentName() == "" {
			continue
		}
		if _, ok := groups[n.DocumentID]; ok {
			continue
		}
		g := &Group{ID: n.DocumentID, Label: GroupLabel(n.DocumentName())}
		groups[n.DocumentID] = g
		s.Groups = append(s.Groups, g)
	}

	// Second pass: build items and assign membership.
	for _, n := range nodes {
		it := &Item{
			ID:     n.ID,
			Label:  ItemLabel(n.Title, n.Status),
			Type:   n.Type,
			Status: n.Status,
			Node:   n,
		}
		if g, ok := groups[n.DocumentID]; ok {
			it.GroupID = g.ID
			g.Items = append(g.Items, it)
		} else {
			s.Orphans = append(s.Orphans, it)
		}
		s.items[n.ID] = it
	}

	// Admit edges whose endpoints both exist.
	for _, e := range edges {
		if _, ok := s.items[e.SourceNodeID]; !ok {
			continue
		}
		if _, ok := s.items[e.TargetNodeID]; !ok {
			continue
		}
		s.Edges = append(s.Edges, &Edge{
			ID:     e.ID,
			Source: e.SourceNodeID,
			Target: e.TargetNodeID,
			Type:   e.Type,
			Label:  EdgeLabel(e.Type),
			Color:  EdgeColor(e.Type),
			Dashed: EdgeDashed(e.Type),
		})
	}

	return s
}

// Item returns the drawable item for a node ID.
func (s *Set) Item(id string) (*Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Len returns the number of drawable items, grouped and orphaned.
func (s *Set) Len() int {
	return len(s.items)
}

// Empty reports whether the set has no items at all.
func (s *Set) Empty() bool {
	return len(s.items) == 0
}
