package events

import (
	"context"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// Event topic constants
const (
	TopicNodeUpdated       = "tendergraph.node.updated"
	TopicNodeStatusChanged = "tendergraph.node.status_changed"
	TopicGraphImported     = "tendergraph.graph.imported"
)

// Event types

type NodeUpdated struct {
	ProjectID string         `json:"project_id"`
	Node      *model.Node    `json:"node"`
	Changes   map[string]any `json:"changes"` // field name -> new value
}

type NodeStatusChanged struct {
	ProjectID string       `json:"project_id"`
	NodeID    string       `json:"node_id"`
	OldStatus model.Status `json:"old_status"`
	NewStatus model.Status `json:"new_status"`
}

type GraphImported struct {
	ProjectID     string `json:"project_id"`
	NodesImported int    `json:"nodes_imported"`
	EdgesImported int    `json:"edges_imported"`
	Replace       bool   `json:"replace"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
