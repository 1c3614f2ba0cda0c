package canvas

import (
	"bytes"
	"fmt"
	"html"

	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
)

const svgMargin = 24.0

// SVGRenderer accumulates SVG markup, one fragment per drawn element.
// Document wraps the fragments into a standalone file.
type SVGRenderer struct {
	body bytes.Buffer
}

// SVG renders the diagram as a self-contained SVG document.
func SVG(d *layout.Diagram) []byte {
	var r SVGRenderer
	Draw(&r, d)
	return r.Document(d.Width, d.Height)
}

func (r *SVGRenderer) GroupBox(g *layout.PositionedGroup) {
	fmt.Fprintf(&r.body,
		`  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="#f6f8fa" stroke="#d0d7de"/>`+"\n",
		g.X, g.Y, g.W, g.H)
	fmt.Fprintf(&r.body,
		`  <text x="%.1f" y="%.1f" fill="#57606a" font-weight="600">%s</text>`+"\n",
		g.X+10, g.Y+19, html.EscapeString(g.Group.Label))
}

func (r *SVGRenderer) Edge(e *elements.Edge, from, to *layout.PositionedItem) {
	dash := ""
	if e.Dashed {
		dash = ` stroke-dasharray="6 3"`
	}
	fmt.Fprintf(&r.body,
		`  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"%s marker-end="url(#arrow)"/>`+"\n",
		from.X+from.W/2, from.Y+from.H, to.X+to.W/2, to.Y, e.Color, dash)
}

func (r *SVGRenderer) Node(it *layout.PositionedItem) {
	fill := elements.TypeFill(it.Item.Type)
	stroke := elements.TypeStroke(it.Item.Type)
	fmt.Fprintf(&r.body, "  <g>\n")
	fmt.Fprintf(&r.body, "    <title>%s (%s)</title>\n",
		html.EscapeString(it.Item.Node.Title), it.Item.Status)
	fmt.Fprintf(&r.body,
		`    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s"/>`+"\n",
		it.X, it.Y, it.W, it.H, fill, stroke)
	fmt.Fprintf(&r.body,
		`    <text x="%.1f" y="%.1f" text-anchor="middle" fill="#24292f">%s</text>`+"\n",
		it.X+it.W/2, it.Y+it.H/2+4, html.EscapeString(it.Item.Label))
	fmt.Fprintf(&r.body, "  </g>\n")
}

// Document wraps the accumulated fragments in the SVG envelope. The world
// box is padded by a fixed margin on every side.
func (r *SVGRenderer) Document(worldW, worldH float64) []byte {
	w := worldW + 2*svgMargin
	h := worldH + 2*svgMargin
	var out bytes.Buffer
	fmt.Fprintf(&out,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="sans-serif" font-size="12">`+"\n",
		w, h, w, h)
	out.WriteString("<defs>\n")
	out.WriteString(`  <marker id="arrow" viewBox="0 0 8 8" refX="8" refY="4" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` + "\n")
	out.WriteString(`    <path d="M0,0 L8,4 L0,8 z" fill="#8b949e"/>` + "\n")
	out.WriteString("  </marker>\n</defs>\n")
	fmt.Fprintf(&out, `<rect width="%.0f" height="%.0f" fill="#ffffff"/>`+"\n", w, h)
	fmt.Fprintf(&out, `<g transform="translate(%.0f,%.0f)">`+"\n", svgMargin, svgMargin)
	out.Write(r.body.Bytes())
	out.WriteString("</g>\n</svg>\n")
	return out.Bytes()
}
