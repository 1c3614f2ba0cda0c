package canvas

import (
	"testing"

	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
)

func groupedNode(id, doc, filename, title string, status model.Status) *model.Node {
	return &model.Node{
		ID:         id,
		Type:       model.TypeRequirement,
		Title:      title,
		Status:     status,
		DocumentID: doc,
		Document:   &model.DocumentRef{Filename: filename},
	}
}

func orphanNode(id, title string, status model.Status) *model.Node {
	return &model.Node{ID: id, Type: model.TypeCheckbox, Title: title, Status: status}
}

func modelEdge(id, src, tgt string, typ model.EdgeType) *model.Edge {
	return &model.Edge{ID: id, SourceNodeID: src, TargetNodeID: tgt, Type: typ}
}

func buildDiagram(nodes []*model.Node, edges []*model.Edge) (*elements.Set, *layout.Diagram) {
	set := elements.Build(nodes, edges)
	return set, layout.New(layout.DefaultParams()).Layout(set)
}

// recordingRenderer tags each call so tests can check z-order.
type recordingRenderer struct {
	calls []string
}

func (r *recordingRenderer) GroupBox(g *layout.PositionedGroup) {
	r.calls = append(r.calls, "group:"+g.Group.ID)
}

func (r *recordingRenderer) Edge(e *elements.Edge, from, to *layout.PositionedItem) {
	r.calls = append(r.calls, "edge:"+e.ID)
}

func (r *recordingRenderer) Node(it *layout.PositionedItem) {
	r.calls = append(r.calls, "node:"+it.Item.ID)
}

func TestDraw_GroupsThenEdgesThenNodes(t *testing.T) {
	_, d := buildDiagram([]*model.Node{
		groupedNode("nd-a", "D1", "spec.pdf", "Alpha", model.StatusNotStarted),
		groupedNode("nd-b", "D1", "spec.pdf", "Beta", model.StatusNotStarted),
		orphanNode("nd-c", "Gamma", model.StatusNotStarted),
	}, []*model.Edge{
		modelEdge("ed-1", "nd-a", "nd-b", model.EdgeRequires),
	})

	var r recordingRenderer
	Draw(&r, d)

	want := []string{"group:D1", "edge:ed-1", "node:nd-a", "node:nd-b", "node:nd-c"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, r.calls[i], want[i])
		}
	}
}
