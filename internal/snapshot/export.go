package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/store"
)

// Header is the first JSONL record written by WriteJSONL.
type Header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WriteJSONL writes one project's full graph as JSONL to w: a header line,
// then one line per node and one per edge, each sorted by ID.
func WriteJSONL(ctx context.Context, s store.Store, projectID string, w io.Writer) error {
	nodes, edges, err := s.ExportGraph(ctx, projectID)
	if err != nil {
		return fmt.Errorf("export graph: %w", err)
	}
	return EncodeJSONL(projectID, nodes, edges, w)
}

// EncodeJSONL writes an already-loaded graph in the snapshot JSONL format.
// The input slices are sorted in place by ID.
func EncodeJSONL(projectID string, nodes []*model.Node, edges []*model.Edge, w io.Writer) error {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ID < edges[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(Header{
		Version:   "1",
		Type:      "header",
		ProjectID: projectID,
		Timestamp: time.Now().UTC(),
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, n := range nodes {
		if err := enc.Encode(record{Type: "node", Data: n}); err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		if err := enc.Encode(record{Type: "edge", Data: e}); err != nil {
			return fmt.Errorf("encode edge %s: %w", e.ID, err)
		}
	}

	return nil
}

// ParseJSONL reads a snapshot produced by WriteJSONL and returns its nodes
// and edges. The header line is validated but otherwise ignored; unknown
// record types are skipped so newer snapshots stay readable.
func ParseJSONL(r io.Reader) ([]*model.Node, []*model.Edge, error) {
	dec := json.NewDecoder(r)

	var nodes []*model.Node
	var edges []*model.Edge
	first := true

	for {
		var raw struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := dec.Decode(&raw); err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, fmt.Errorf("decode snapshot line: %w", err)
		}

		if first {
			first = false
			if raw.Type != "header" {
				return nil, nil, fmt.Errorf("snapshot missing header, got %q", raw.Type)
			}
			continue
		}

		switch raw.Type {
		case "node":
			var n model.Node
			if err := json.Unmarshal(raw.Data, &n); err != nil {
				return nil, nil, fmt.Errorf("decode node record: %w", err)
			}
			nodes = append(nodes, &n)
		case "edge":
			var e model.Edge
			if err := json.Unmarshal(raw.Data, &e); err != nil {
				return nil, nil, fmt.Errorf("decode edge record: %w", err)
			}
			edges = append(edges, &e)
		}
	}

	return nodes, edges, nil
}
