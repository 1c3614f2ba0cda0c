package layout

import (
	"sort"

	"github.com/meulenbelt/tendergraph/internal/elements"
)

// point is a relative position inside a group's content area.
type point struct {
	x, y float64
}

// layered computes relative top-left positions for one group's items using
// only the given intra-group edges. Weakly connected components lay out
// independently and pack side by side. Returns positions keyed by item ID
// and the content extent.
func (e *Engine) layered(items []*elements.Item, edges []*elements.Edge) (map[string]point, float64, float64) {
	n := len(items)
	pos := make(map[string]point, n)
	if n == 0 {
		return pos, 0, 0
	}

	index := make(map[string]int, n)
	for i, it := range items {
		index[it.ID] = i
	}

	out := make([][]int, n)
	in := make([][]int, n)
	for _, eg := range edges {
		s, t := index[eg.Source], index[eg.Target]
		out[s] = append(out[s], t)
		in[t] = append(in[t], s)
	}

	ranks := assignRanks(n, edges, index)
	comps := components(n, out, in)

	var originX, maxH float64
	for _, comp := range comps {
		w, h := e.placeComponent(items, comp, ranks, out, in, originX, pos)
		originX += w + e.params.NodeGapX
		if h > maxH {
			maxH = h
		}
	}

	return pos, originX - e.params.NodeGapX, maxH
}

// assignRanks computes a rank per item: the longest edge-respecting path
// from any source. Relaxation is bounded at one round per item, so cyclic
// input terminates with stable if imperfect ranks.
func assignRanks(n int, edges []*elements.Edge, index map[string]int) []int {
	ranks := make([]int, n)
	for round := 0; round < n; round++ {
		changed := false
		for _, e := range edges {
			s, t := index[e.Source], index[e.Target]
			if ranks[t] < ranks[s]+1 {
				ranks[t] = ranks[s] + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return ranks
}

// components returns the weakly connected components, each as an ascending
// list of item indices, ordered by their first member.
func components(n int, out, in [][]int) [][]int {
	seen := make([]bool, n)
	var comps [][]int
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		var comp []int
		queue := []int{i}
		seen[i] = true
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			comp = append(comp, v)
			for _, w := range out[v] {
				if !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
			for _, w := range in[v] {
				if !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

// placeComponent lays out one component with its left edge at originX and
// writes in-group positions into pos. Returns the component's extent.
func (e *Engine) placeComponent(items []*elements.Item, comp []int, ranks []int, out, in [][]int, originX float64, pos map[string]point) (float64, float64) {
	p := e.params

	// Bucket members by rank, normalized so the component starts at level 0.
	minRank, maxRank := ranks[comp[0]], ranks[comp[0]]
	for _, v := range comp {
		if ranks[v] < minRank {
			minRank = ranks[v]
		}
		if ranks[v] > maxRank {
			maxRank = ranks[v]
		}
	}
	buckets := make([][]int, maxRank-minRank+1)
	for _, v := range comp {
		r := ranks[v] - minRank
		buckets[r] = append(buckets[r], v)
	}
	// Bounded relaxation can leave holes on cyclic input; compact them.
	var levels [][]int
	for _, lvl := range buckets {
		if len(lvl) > 0 {
			levels = append(levels, lvl)
		}
	}

	posIn := make([]int, len(items))
	for _, lvl := range levels {
		for i, v := range lvl {
			posIn[v] = i
		}
	}

	// Barycenter crossing reduction, fixed sweep budget.
	for sweep := 0; sweep < p.CrossingSweeps; sweep++ {
		for l := 1; l < len(levels); l++ {
			sortByBarycenter(levels[l], in, posIn)
		}
		for l := len(levels) - 2; l >= 0; l-- {
			sortByBarycenter(levels[l], out, posIn)
		}
	}

	pitchX := p.NodeWidth + p.NodeGapX
	pitchY := p.NodeHeight + p.RankGapY

	maxLen := 0
	for _, lvl := range levels {
		if len(lvl) > maxLen {
			maxLen = len(lvl)
		}
	}
	compW := float64(maxLen-1)*pitchX + p.NodeWidth
	for l, lvl := range levels {
		levelW := float64(len(lvl)-1)*pitchX + p.NodeWidth
		offset := (compW - levelW) / 2
		for i, v := range lvl {
			pos[items[v].ID] = point{
				x: originX + offset + float64(i)*pitchX,
				y: float64(l) * pitchY,
			}
		}
	}
	compH := float64(len(levels)-1)*pitchY + p.NodeHeight
	return compW, compH
}

// sortByBarycenter stably reorders one level by the mean order position of
// each member's neighbors. Members with no neighbors hold their slot.
func sortByBarycenter(level []int, adj [][]int, posIn []int) {
	if len(level) < 2 {
		return
	}
	bary := make(map[int]float64, len(level))
	for i, v := range level {
		ns := adj[v]
		if len(ns) == 0 {
			bary[v] = float64(i)
			continue
		}
		sum := 0.0
		for _, w := range ns {
			sum += float64(posIn[w])
		}
		bary[v] = sum / float64(len(ns))
	}
	sort.SliceStable(level, func(a, b int) bool {
		return bary[level[a]] < bary[level[b]]
	})
	for i, v := range level {
		posIn[v] = i
	}
}
