package canvas

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
)

// HTMLRenderer collects drawn elements into a JSON payload that the
// emitted document's script replays onto a <canvas>. The file is fully
// self-contained: no external scripts, fonts, or styles.
type HTMLRenderer struct {
	groups []htmlGroup
	nodes  []htmlNode
	edges  []htmlEdge
}

type htmlGroup struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

type htmlNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke"`
}

type htmlEdge struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Color  string  `json:"color"`
	Dashed bool    `json:"dashed"`
}

// HTML renders the diagram as a standalone interactive HTML page.
func HTML(d *layout.Diagram, title string) ([]byte, error) {
	var r HTMLRenderer
	Draw(&r, d)
	return r.Document(d, title)
}

func (r *HTMLRenderer) GroupBox(g *layout.PositionedGroup) {
	r.groups = append(r.groups, htmlGroup{Label: g.Group.Label, X: g.X, Y: g.Y, W: g.W, H: g.H})
}

func (r *HTMLRenderer) Edge(e *elements.Edge, from, to *layout.PositionedItem) {
	r.edges = append(r.edges, htmlEdge{
		X1:     from.X + from.W/2,
		Y1:     from.Y + from.H,
		X2:     to.X + to.W/2,
		Y2:     to.Y,
		Color:  e.Color,
		Dashed: e.Dashed,
	})
}

func (r *HTMLRenderer) Node(it *layout.PositionedItem) {
	r.nodes = append(r.nodes, htmlNode{
		ID:     it.Item.ID,
		Label:  it.Item.Label,
		Title:  it.Item.Node.Title,
		Type:   string(it.Item.Type),
		Status: string(it.Item.Status),
		X:      it.X,
		Y:      it.Y,
		W:      it.W,
		H:      it.H,
		Fill:   elements.TypeFill(it.Item.Type),
		Stroke: elements.TypeStroke(it.Item.Type),
	})
}

// Document assembles the page around the collected payload.
func (r *HTMLRenderer) Document(d *layout.Diagram, title string) ([]byte, error) {
	groups, nodes, edges := r.groups, r.nodes, r.edges
	if groups == nil {
		groups = []htmlGroup{}
	}
	if nodes == nil {
		nodes = []htmlNode{}
	}
	if edges == nil {
		edges = []htmlEdge{}
	}
	payload := struct {
		Width  float64     `json:"width"`
		Height float64     `json:"height"`
		Groups []htmlGroup `json:"groups"`
		Nodes  []htmlNode  `json:"nodes"`
		Edges  []htmlEdge  `json:"edges"`
	}{d.Width, d.Height, groups, nodes, edges}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding diagram: %w", err)
	}
	view := fmt.Sprintf("{min:%g,max:%g,step:%g,pad:%g}", MinZoom, MaxZoom, ZoomStep, FitPadding)
	safe := html.EscapeString(title)
	return []byte(fmt.Sprintf(htmlTemplate, safe, safe, legendHTML(), data, view)), nil
}

func legendHTML() string {
	var b strings.Builder
	for _, t := range nodeTypeOrder {
		fmt.Fprintf(&b,
			`    <div><span class="chip" style="background:%s;border-color:%s"></span>%s</div>`+"\n",
			elements.TypeFill(t), elements.TypeStroke(t), t)
	}
	return b.String()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
  :root { --border: #d0d7de; --muted: #57606a; }
  * { box-sizing: border-box; margin: 0; }
  body { font-family: -apple-system, 'Segoe UI', sans-serif; font-size: 14px; height: 100vh; display: flex; flex-direction: column; overflow: hidden; background: #ffffff; color: #24292f; }
  header { display: flex; justify-content: space-between; align-items: center; padding: 8px 16px; border-bottom: 1px solid var(--border); }
  .heading { display: flex; align-items: baseline; }
  h1 { font-size: 16px; font-weight: 600; }
  .counts { color: var(--muted); font-size: 12px; margin-left: 12px; }
  .toolbar { display: flex; gap: 6px; }
  .toolbar button { font: inherit; padding: 4px 10px; border: 1px solid var(--border); border-radius: 6px; background: #f6f8fa; cursor: pointer; }
  .toolbar button:hover { background: #eaeef2; }
  #wrap { position: relative; flex: 1; background: #ffffff; }
  #cv { position: absolute; inset: 0; width: 100%%; height: 100%%; cursor: grab; }
  #cv.dragging { cursor: grabbing; }
  .legend { position: absolute; right: 12px; bottom: 12px; background: rgba(255,255,255,0.92); border: 1px solid var(--border); border-radius: 8px; padding: 10px 14px; font-size: 12px; }
  .legend div { display: flex; align-items: center; gap: 8px; margin: 2px 0; }
  .legend .chip { width: 14px; height: 14px; border-radius: 3px; border: 1px solid; display: inline-block; }
  footer { padding: 4px 16px; border-top: 1px solid var(--border); color: var(--muted); font-size: 12px; }
  kbd { border: 1px solid var(--border); border-radius: 3px; padding: 0 4px; font-family: monospace; }
</style>
</head>
<body>
<header>
  <div class="heading"><h1>%s</h1><span class="counts" id="counts"></span></div>
  <div class="toolbar">
    <button id="btn-zoom-in" title="Zoom in">+</button>
    <button id="btn-zoom-out" title="Zoom out">&minus;</button>
    <button id="btn-reset" title="Reset view">Reset</button>
    <button id="btn-fullscreen" title="Fullscreen">&#x26F6;</button>
  </div>
</header>
<main id="wrap">
  <canvas id="cv"></canvas>
  <div class="legend">
%s  </div>
</main>
<footer><kbd>drag</kbd> pan &middot; <kbd>scroll</kbd> zoom &middot; <kbd>+</kbd>/<kbd>&minus;</kbd> zoom &middot; <kbd>r</kbd> reset &middot; <kbd>f</kbd> fullscreen</footer>
<script>
const DATA = %s;
const VIEW = %s;

const cv = document.getElementById('cv');
const ctx = cv.getContext('2d');
let zoom = 1, offX = 0, offY = 0;

document.getElementById('counts').textContent =
  DATA.nodes.length + ' nodes · ' + DATA.edges.length + ' edges';

function clampZoom(z) { return Math.min(VIEW.max, Math.max(VIEW.min, z)); }

function fit() {
  const vw = cv.clientWidth, vh = cv.clientHeight;
  if (DATA.width <= 0 || DATA.height <= 0) { zoom = 1; offX = vw / 2; offY = vh / 2; draw(); return; }
  zoom = clampZoom(VIEW.pad * Math.min(vw / DATA.width, vh / DATA.height));
  offX = (vw - DATA.width * zoom) / 2;
  offY = (vh - DATA.height * zoom) / 2;
  draw();
}

function zoomAt(f, sx, sy) {
  const wx = (sx - offX) / zoom, wy = (sy - offY) / zoom;
  zoom = clampZoom(zoom * f);
  offX = sx - wx * zoom;
  offY = sy - wy * zoom;
  draw();
}

function zoomCentered(f) { zoomAt(f, cv.clientWidth / 2, cv.clientHeight / 2); }

function draw() {
  const dpr = window.devicePixelRatio || 1;
  if (cv.width !== cv.clientWidth * dpr || cv.height !== cv.clientHeight * dpr) {
    cv.width = cv.clientWidth * dpr;
    cv.height = cv.clientHeight * dpr;
  }
  ctx.setTransform(dpr, 0, 0, dpr, 0, 0);
  ctx.clearRect(0, 0, cv.clientWidth, cv.clientHeight);
  ctx.setTransform(zoom * dpr, 0, 0, zoom * dpr, offX * dpr, offY * dpr);
  for (const g of DATA.groups) {
    ctx.fillStyle = '#f6f8fa';
    ctx.fillRect(g.x, g.y, g.w, g.h);
    ctx.strokeStyle = '#d0d7de';
    ctx.lineWidth = 1;
    ctx.strokeRect(g.x, g.y, g.w, g.h);
    ctx.fillStyle = '#57606a';
    ctx.font = '600 13px sans-serif';
    ctx.textAlign = 'left';
    ctx.fillText(g.label, g.x + 10, g.y + 19);
  }
  for (const e of DATA.edges) {
    ctx.strokeStyle = e.color;
    ctx.lineWidth = 1.5;
    ctx.setLineDash(e.dashed ? [6, 3] : []);
    ctx.beginPath();
    ctx.moveTo(e.x1, e.y1);
    ctx.lineTo(e.x2, e.y2);
    ctx.stroke();
    ctx.setLineDash([]);
    arrow(e);
  }
  for (const n of DATA.nodes) {
    ctx.fillStyle = n.fill;
    ctx.fillRect(n.x, n.y, n.w, n.h);
    ctx.strokeStyle = n.stroke;
    ctx.lineWidth = 1;
    ctx.strokeRect(n.x, n.y, n.w, n.h);
    ctx.fillStyle = '#24292f';
    ctx.font = '12px sans-serif';
    ctx.textAlign = 'center';
    ctx.fillText(n.label, n.x + n.w / 2, n.y + n.h / 2 + 4);
  }
}

function arrow(e) {
  const a = Math.atan2(e.y2 - e.y1, e.x2 - e.x1);
  ctx.beginPath();
  ctx.moveTo(e.x2, e.y2);
  ctx.lineTo(e.x2 - 8 * Math.cos(a - 0.4), e.y2 - 8 * Math.sin(a - 0.4));
  ctx.lineTo(e.x2 - 8 * Math.cos(a + 0.4), e.y2 - 8 * Math.sin(a + 0.4));
  ctx.closePath();
  ctx.fillStyle = e.color;
  ctx.fill();
}

let dragging = false, lastX = 0, lastY = 0;
cv.addEventListener('mousedown', ev => { dragging = true; lastX = ev.clientX; lastY = ev.clientY; cv.classList.add('dragging'); });
window.addEventListener('mousemove', ev => {
  if (!dragging) return;
  offX += ev.clientX - lastX;
  offY += ev.clientY - lastY;
  lastX = ev.clientX;
  lastY = ev.clientY;
  draw();
});
window.addEventListener('mouseup', () => { dragging = false; cv.classList.remove('dragging'); });
cv.addEventListener('wheel', ev => {
  ev.preventDefault();
  const r = cv.getBoundingClientRect();
  zoomAt(ev.deltaY < 0 ? VIEW.step : 1 / VIEW.step, ev.clientX - r.left, ev.clientY - r.top);
}, { passive: false });

document.getElementById('btn-zoom-in').onclick = () => zoomCentered(VIEW.step);
document.getElementById('btn-zoom-out').onclick = () => zoomCentered(1 / VIEW.step);
document.getElementById('btn-reset').onclick = fit;
document.getElementById('btn-fullscreen').onclick = () => {
  if (document.fullscreenElement) document.exitFullscreen();
  else document.getElementById('wrap').requestFullscreen();
};
document.addEventListener('fullscreenchange', fit);
window.addEventListener('resize', fit);
window.addEventListener('keydown', ev => {
  if (ev.key === '+' || ev.key === '=') zoomCentered(VIEW.step);
  else if (ev.key === '-') zoomCentered(1 / VIEW.step);
  else if (ev.key === 'r' || ev.key === '0') fit();
  else if (ev.key === 'f') document.getElementById('btn-fullscreen').click();
});
fit();
</script>
</body>
</html>
`
