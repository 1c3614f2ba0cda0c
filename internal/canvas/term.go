package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
)

// A character cell stands for this many world units. World geometry is
// sized in pixels, so 8x16 keeps node boxes near their on-screen aspect.
const (
	cellPxX = 8
	cellPxY = 16
)

// 256-color palette, matching internal/ui.
const (
	termAccent = "74"
	termMuted  = "245"
	termGreen  = "114"
	termYellow = "179"
	termRed    = "167"
	termDim    = "240"
)

var (
	boxRunes      = [6]rune{'┌', '┐', '└', '┘', '─', '│'}
	selectedRunes = [6]rune{'╔', '╗', '╚', '╝', '═', '║'}
)

// TermRenderer rasterizes a diagram onto a rune grid for terminal output.
// Each cell carries a foreground color; runs of equal color are styled
// with lipgloss when the frame is flushed. With color off the frame is
// plain runes, which is also what tests assert against.
type TermRenderer struct {
	vp    *Viewport
	cols  int
	rows  int
	color bool

	// Selected names the item drawn with a double-line frame.
	Selected string

	cells [][]rune
	fg    [][]string
}

// NewTermRenderer returns a renderer over a cols x rows character grid.
func NewTermRenderer(vp *Viewport, cols, rows int, color bool) *TermRenderer {
	r := &TermRenderer{vp: vp, cols: cols, rows: rows, color: color}
	r.cells = make([][]rune, rows)
	r.fg = make([][]string, rows)
	for y := range r.cells {
		r.cells[y] = make([]rune, cols)
		r.fg[y] = make([]string, cols)
		for x := range r.cells[y] {
			r.cells[y][x] = ' '
		}
	}
	return r
}

// GroupBox draws the group frame with its label inlaid in the top border.
func (r *TermRenderer) GroupBox(g *layout.PositionedGroup) {
	x0, y0 := r.cell(g.X, g.Y)
	x1, y1 := r.cell(g.X+g.W, g.Y+g.H)
	if x1-x0 < 3 || y1-y0 < 2 {
		r.set(y0, x0, '▫', termMuted)
		return
	}
	r.frame(x0, y0, x1, y1, boxRunes, termMuted, false)
	label := trimRunes(g.Group.Label, x1-x0-4)
	if label != "" {
		r.text(y0, x0+2, " "+label+" ", termMuted)
	}
}

// Edge draws a vertical-horizontal-vertical run between the two boxes.
// Downward edges leave the source's bottom edge and enter the target's
// top edge; upward and same-rank edges route over the boxes' far sides.
// Runs claim only empty cells, so frames drawn afterwards stay intact.
func (r *TermRenderer) Edge(e *elements.Edge, from, to *layout.PositionedItem) {
	h, v := '─', '│'
	if e.Dashed {
		h, v = '╌', '┆'
	}
	fx, fy := r.cell(from.X+from.W/2, from.Y+from.H)
	tx, ty := r.cell(to.X+to.W/2, to.Y)
	if ty > fy {
		r.put(ty-1, tx, '↓', e.Color)
		if tx == fx {
			r.vspan(fx, fy+1, ty-2, v, e.Color)
			return
		}
		mid := (fy + ty) / 2
		c0, c1 := '└', '┐'
		if tx < fx {
			c0, c1 = '┘', '┌'
		}
		r.vspan(fx, fy+1, mid-1, v, e.Color)
		r.put(mid, fx, c0, e.Color)
		r.hspan(mid, min(fx, tx)+1, max(fx, tx)-1, h, e.Color)
		r.put(mid, tx, c1, e.Color)
		r.vspan(tx, mid+1, ty-2, v, e.Color)
		return
	}
	fx, fy = r.cell(from.X+from.W/2, from.Y)
	tx, ty = r.cell(to.X+to.W/2, to.Y+to.H)
	r.put(ty+1, tx, '↑', e.Color)
	if tx == fx {
		r.vspan(fx, ty+2, fy-1, v, e.Color)
		return
	}
	mid := (fy + ty) / 2
	c0, c1 := '┌', '┘'
	if tx < fx {
		c0, c1 = '┐', '└'
	}
	r.vspan(fx, mid+1, fy-1, v, e.Color)
	r.put(mid, fx, c0, e.Color)
	r.hspan(mid, min(fx, tx)+1, max(fx, tx)-1, h, e.Color)
	r.put(mid, tx, c1, e.Color)
	r.vspan(tx, ty+2, mid-1, v, e.Color)
}

// Node draws the item box with a centered label and a colored status
// glyph. Boxes too small for the current zoom collapse to a marker.
func (r *TermRenderer) Node(it *layout.PositionedItem) {
	x0, y0 := r.cell(it.X, it.Y)
	x1, y1 := r.cell(it.X+it.W, it.Y+it.H)
	selected := it.Item.ID == r.Selected
	border := ""
	if selected {
		border = termAccent
	}
	if x1-x0 < 3 || y1-y0 < 2 {
		r.set(y0, x0, '▪', border)
		return
	}
	runes := boxRunes
	if selected {
		runes = selectedRunes
	}
	r.frame(x0, y0, x1, y1, runes, border, true)

	glyph := elements.StatusGlyph(it.Item.Status)
	title := it.Item.Label
	if glyph != "" {
		title = strings.TrimSuffix(title, " "+glyph)
	}
	interior := x1 - x0 - 1
	avail := interior
	if glyph != "" {
		avail -= 2
	}
	if avail < 1 {
		return
	}
	title = trimRunes(title, avail)
	width := len([]rune(title))
	if glyph != "" {
		width += 2
	}
	row := (y0 + y1) / 2
	start := x0 + 1 + (interior-width)/2
	r.text(row, start, title, "")
	if glyph != "" {
		r.set(row, start+width-1, []rune(glyph)[0], statusColor(it.Item.Status))
	}
}

// Term renders one fitted frame of the diagram onto a cols x rows grid
// and returns it line by line. Non-interactive counterpart to Session.
func Term(d *layout.Diagram, cols, rows int, color, legend bool) []string {
	vp := NewViewport(float64(cols*cellPxX), float64(rows*cellPxY))
	vp.Fit(d.Width, d.Height)
	r := NewTermRenderer(vp, cols, rows, color)
	Draw(r, d)
	if legend {
		r.Legend()
	}
	return r.Lines()
}

// Legend paints the node-type color key into the bottom-left corner.
func (r *TermRenderer) Legend() {
	row := r.rows - len(nodeTypeOrder)
	for i, t := range nodeTypeOrder {
		r.set(row+i, 1, '■', elements.TypeStroke(t))
		r.text(row+i, 3, string(t), termMuted)
	}
}

// Lines returns the frame one styled row at a time. The interactive
// session joins them with CRLF for raw mode.
func (r *TermRenderer) Lines() []string {
	styles := make(map[string]lipgloss.Style)
	lines := make([]string, r.rows)
	for y := 0; y < r.rows; y++ {
		if !r.color {
			lines[y] = string(r.cells[y])
			continue
		}
		var b strings.Builder
		start := 0
		for x := 1; x <= r.cols; x++ {
			if x < r.cols && r.fg[y][x] == r.fg[y][start] {
				continue
			}
			seg := string(r.cells[y][start:x])
			if c := r.fg[y][start]; c != "" {
				st, ok := styles[c]
				if !ok {
					st = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
					styles[c] = st
				}
				seg = st.Render(seg)
			}
			b.WriteString(seg)
			start = x
		}
		lines[y] = b.String()
	}
	return lines
}

func (r *TermRenderer) String() string {
	return strings.Join(r.Lines(), "\n")
}

func (r *TermRenderer) cell(wx, wy float64) (col, row int) {
	sx, sy := r.vp.ToScreen(wx, wy)
	return int(math.Round(sx / cellPxX)), int(math.Round(sy / cellPxY))
}

// frame draws a rectangle border; fill clears the interior, covering any
// edge runs drawn underneath.
func (r *TermRenderer) frame(x0, y0, x1, y1 int, runes [6]rune, color string, fill bool) {
	r.set(y0, x0, runes[0], color)
	r.set(y0, x1, runes[1], color)
	r.set(y1, x0, runes[2], color)
	r.set(y1, x1, runes[3], color)
	for x := x0 + 1; x < x1; x++ {
		r.set(y0, x, runes[4], color)
		r.set(y1, x, runes[4], color)
	}
	for y := y0 + 1; y < y1; y++ {
		r.set(y, x0, runes[5], color)
		r.set(y, x1, runes[5], color)
		if fill {
			for x := x0 + 1; x < x1; x++ {
				r.set(y, x, ' ', "")
			}
		}
	}
}

func (r *TermRenderer) set(row, col int, ch rune, color string) {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols {
		return
	}
	r.cells[row][col] = ch
	r.fg[row][col] = color
}

// put writes only into empty cells.
func (r *TermRenderer) put(row, col int, ch rune, color string) {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols {
		return
	}
	if r.cells[row][col] != ' ' {
		return
	}
	r.cells[row][col] = ch
	r.fg[row][col] = color
}

func (r *TermRenderer) hspan(row, c0, c1 int, ch rune, color string) {
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	for c := c0; c <= c1; c++ {
		r.put(row, c, ch, color)
	}
}

func (r *TermRenderer) vspan(col, r0, r1 int, ch rune, color string) {
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	for y := r0; y <= r1; y++ {
		r.put(y, col, ch, color)
	}
}

func (r *TermRenderer) text(row, col int, s string, color string) {
	for i, ch := range []rune(s) {
		r.set(row, col+i, ch, color)
	}
}

func trimRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}

func statusColor(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return termGreen
	case model.StatusInProgress:
		return termYellow
	case model.StatusBlocked:
		return termRed
	default:
		return ""
	}
}
