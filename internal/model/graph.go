package model

import "math"

// GraphResponse is the payload returned by the graph endpoint: the full
// node/edge collection for one project plus display counters. TotalNodes
// and TotalEdges are informational and may differ from len(Nodes)/len(Edges)
// once the element builder has dropped unrenderable records.
type GraphResponse struct {
	Nodes      []*Node `json:"nodes"`
	Edges      []*Edge `json:"edges"`
	TotalNodes int     `json:"total_nodes"`
	TotalEdges int     `json:"total_edges"`
}

// GraphStats summarizes completion progress across a project's nodes.
// Not-applicable nodes are excluded from the percentage base.
type GraphStats struct {
	TotalNodes           int            `json:"total_nodes"`
	ByStatus             map[Status]int `json:"by_status"`
	CompletionPercentage float64        `json:"completion_percentage"`
	ApplicableItems      int            `json:"applicable_items"`
	CompletedItems       int            `json:"completed_items"`
}

// ComputeStats derives completion statistics from a node set.
// Every known status appears in ByStatus, zero counts included.
func ComputeStats(nodes []*Node) *GraphStats {
	byStatus := map[Status]int{
		StatusNotStarted:    0,
		StatusInProgress:    0,
		StatusCompleted:     0,
		StatusNotApplicable: 0,
		StatusBlocked:       0,
	}
	for _, n := range nodes {
		byStatus[n.Status]++
	}

	total := len(nodes)
	completed := byStatus[StatusCompleted]
	applicable := total - byStatus[StatusNotApplicable]

	var pct float64
	if applicable > 0 {
		pct = float64(completed) / float64(applicable) * 100
		pct = math.Round(pct*10) / 10
	}

	return &GraphStats{
		TotalNodes:           total,
		ByStatus:             byStatus,
		CompletionPercentage: pct,
		ApplicableItems:      applicable,
		CompletedItems:       completed,
	}
}
