package layout

import (
	"math"
	"sort"

	"github.com/meulenbelt/tendergraph/internal/elements"
)

// Layout positions every element of the set: layered sublayouts per group,
// group boxes packed into a near-square grid, orphans on a fixed-pitch grid
// below the groups.
func (e *Engine) Layout(set *elements.Set) *Diagram {
	p := e.params
	d := &Diagram{
		Edges: set.Edges,
		byID:  make(map[string]*PositionedItem, set.Len()),
	}

	type groupBox struct {
		group    *elements.Group
		w, h     float64
		children map[string]point
	}

	intra := intraGroupEdges(set)
	boxes := make([]*groupBox, 0, len(set.Groups))
	for _, g := range set.Groups {
		children, cw, ch := e.layered(g.Items, intra[g.ID])
		if len(g.Items) == 0 {
			// Minimum box: room for a single default-size item.
			cw, ch = p.NodeWidth, p.NodeHeight
		}
		boxes = append(boxes, &groupBox{
			group:    g,
			w:        cw + 2*p.GroupPadding,
			h:        ch + 2*p.GroupPadding + p.HeaderOffset,
			children: children,
		})
	}

	// Largest groups first; equal counts keep encounter order.
	sort.SliceStable(boxes, func(i, j int) bool {
		return len(boxes[i].group.Items) > len(boxes[j].group.Items)
	})

	cols := 1
	if len(boxes) > 1 {
		cols = int(math.Ceil(math.Sqrt(float64(len(boxes)))))
	}

	var x, y, rowH float64
	for i, b := range boxes {
		if i > 0 && i%cols == 0 {
			y += rowH + p.GroupGapY
			x = 0
			rowH = 0
		}
		pg := &PositionedGroup{Group: b.group, X: x, Y: y, W: b.w, H: b.h}
		d.Groups = append(d.Groups, pg)

		for _, it := range b.group.Items {
			rel := b.children[it.ID]
			pi := &PositionedItem{
				Item: it,
				X:    pg.X + p.GroupPadding + rel.x,
				Y:    pg.Y + p.GroupPadding + p.HeaderOffset + rel.y,
				W:    p.NodeWidth,
				H:    p.NodeHeight,
			}
			d.Items = append(d.Items, pi)
			d.byID[it.ID] = pi
		}

		x += b.w + p.GroupGapX
		if b.h > rowH {
			rowH = b.h
		}
	}

	groupsH := 0.0
	if len(boxes) > 0 {
		groupsH = y + rowH
	}

	orphanY := groupsH
	if len(boxes) > 0 && len(set.Orphans) > 0 {
		orphanY += p.GroupGapY
	}
	for i, it := range set.Orphans {
		col := i % p.OrphanColumns
		row := i / p.OrphanColumns
		pi := &PositionedItem{
			Item: it,
			X:    float64(col) * p.OrphanPitchX,
			Y:    orphanY + float64(row)*p.OrphanPitchY,
			W:    p.NodeWidth,
			H:    p.NodeHeight,
		}
		d.Items = append(d.Items, pi)
		d.byID[it.ID] = pi
	}

	for _, pg := range d.Groups {
		if pg.X+pg.W > d.Width {
			d.Width = pg.X + pg.W
		}
		if pg.Y+pg.H > d.Height {
			d.Height = pg.Y + pg.H
		}
	}
	for _, pi := range d.Items {
		if pi.X+pi.W > d.Width {
			d.Width = pi.X + pi.W
		}
		if pi.Y+pi.H > d.Height {
			d.Height = pi.Y + pi.H
		}
	}

	return d
}

// intraGroupEdges buckets the admitted edges whose endpoints share a group.
func intraGroupEdges(set *elements.Set) map[string][]*elements.Edge {
	intra := make(map[string][]*elements.Edge)
	for _, e := range set.Edges {
		src, ok := set.Item(e.Source)
		if !ok || src.GroupID == "" {
			continue
		}
		tgt, ok := set.Item(e.Target)
		if !ok || tgt.GroupID != src.GroupID {
			continue
		}
		intra[src.GroupID] = append(intra[src.GroupID], e)
	}
	return intra
}
