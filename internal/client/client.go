// Package client provides a transport-agnostic interface for the tendergraph
// service and an HTTP/JSON implementation that talks to the tendergraph REST API.
package client

import (
	"context"
	"time"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// GraphClient is the interface that all tendergraph CLI commands use to
// communicate with the graph server. It is implemented by HTTPClient (default)
// and can be backed by any transport.
type GraphClient interface {
	// Graph reads
	FetchGraph(ctx context.Context, projectID string) (*model.GraphResponse, error)
	Stats(ctx context.Context, projectID string) (*model.GraphStats, error)
	ListProjects(ctx context.Context) ([]string, error)

	// Node reads and updates
	GetNode(ctx context.Context, projectID, nodeID string) (*model.Node, error)
	UpdateNode(ctx context.Context, projectID, nodeID string, req *UpdateNodeRequest) (*model.Node, error)

	// Bulk transfer
	ImportGraph(ctx context.Context, projectID string, req *ImportRequest) (*ImportResponse, error)
	ExportGraph(ctx context.Context, projectID string) (*ExportResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// UpdateNodeRequest holds optional parameters for updating a node.
// Nil pointer fields mean "don't change".
type UpdateNodeRequest struct {
	Status    *model.Status `json:"status,omitempty"`
	Notes     *string       `json:"notes,omitempty"`
	IsChecked *bool         `json:"is_checked,omitempty"`
}

// ImportRequest holds a graph payload to load into a project.
type ImportRequest struct {
	Nodes   []*model.Node `json:"nodes"`
	Edges   []*model.Edge `json:"edges"`
	Replace bool          `json:"replace,omitempty"`
}

// ImportResponse reports how many rows an import wrote.
type ImportResponse struct {
	NodesImported int `json:"nodes_imported"`
	EdgesImported int `json:"edges_imported"`
}

// ExportResponse is a full dump of one project's graph.
type ExportResponse struct {
	ProjectID  string        `json:"project_id"`
	Nodes      []*model.Node `json:"nodes"`
	Edges      []*model.Edge `json:"edges"`
	ExportedAt time.Time     `json:"exported_at"`
}
