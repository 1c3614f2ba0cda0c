package canvas

import (
	"strings"
	"testing"

	"github.com/meulenbelt/tendergraph/internal/model"
)

func TestHTML_EmbedsDiagram(t *testing.T) {
	_, d := buildDiagram([]*model.Node{
		groupedNode("nd-a", "D1", "spec.pdf", "Alpha", model.StatusNotStarted),
		groupedNode("nd-b", "D1", "spec.pdf", "Beta", model.StatusCompleted),
	}, []*model.Edge{
		modelEdge("ed-1", "nd-a", "nd-b", model.EdgeConditionalOn),
	})

	out, err := HTML(d, "Tender 42")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := string(out)

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Error("missing doctype")
	}
	if !strings.Contains(doc, "<title>Tender 42</title>") {
		t.Error("title not embedded")
	}
	for _, want := range []string{
		`"width":220`,
		`"id":"nd-a"`,
		`"label":"Beta ✓"`,
		`"fill":"#fff3e0"`,
		`"dashed":true`,
		`"color":"#6f42c1"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("embedded diagram data missing %q", want)
		}
	}
	if !strings.Contains(doc, "const DATA = {") {
		t.Error("diagram payload not assigned to DATA")
	}
	if !strings.Contains(doc, "const VIEW = {min:0.1,max:10,step:1.2,pad:0.9};") {
		t.Error("view constants not embedded")
	}
	for _, id := range []string{"btn-zoom-in", "btn-zoom-out", "btn-reset", "btn-fullscreen"} {
		if !strings.Contains(doc, `id="`+id+`"`) {
			t.Errorf("toolbar button %q missing", id)
		}
	}
	if got := strings.Count(doc, `class="chip"`); got != 8 {
		t.Errorf("legend chips = %d, want one per item type", got)
	}
}

func TestHTML_EscapesTitle(t *testing.T) {
	_, d := buildDiagram([]*model.Node{
		orphanNode("nd-a", "Alpha", model.StatusNotStarted),
	}, nil)

	out, err := HTML(d, `Tender <42> & "co"`)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := string(out)
	if !strings.Contains(doc, "Tender &lt;42&gt;") {
		t.Error("title not escaped")
	}
	if strings.Contains(doc, "<42>") {
		t.Error("raw markup leaked into the page")
	}
}

func TestHTML_EmptyDiagram(t *testing.T) {
	_, d := buildDiagram(nil, nil)

	out, err := HTML(d, "empty")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	doc := string(out)
	for _, want := range []string{`"groups":[]`, `"nodes":[]`, `"edges":[]`} {
		if !strings.Contains(doc, want) {
			t.Errorf("empty diagram should embed %q", want)
		}
	}
}
