package store

import (
	"context"
	"errors"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// ErrNotFound is returned when a requested row does not exist in the
// addressed project.
var ErrNotFound = errors.New("not found")

// NodeUpdate holds the mutable node fields. Nil pointer fields mean
// "don't change".
type NodeUpdate struct {
	Status    *model.Status
	Notes     *string
	IsChecked *bool
}

// IsEmpty reports whether the update would change nothing.
func (u NodeUpdate) IsEmpty() bool {
	return u.Status == nil && u.Notes == nil && u.IsChecked == nil
}

// Store defines the persistence interface for tendergraph graphs.
type Store interface {
	// Graph reads
	GetGraph(ctx context.Context, projectID string, filter model.NodeFilter) (*model.GraphResponse, error)
	GetStats(ctx context.Context, projectID string) (*model.GraphStats, error)
	ListProjects(ctx context.Context) ([]string, error)

	// Nodes
	GetNode(ctx context.Context, projectID, nodeID string) (*model.Node, error)
	UpdateNode(ctx context.Context, projectID, nodeID string, upd NodeUpdate) (*model.Node, error)

	// Bulk transfer
	ImportGraph(ctx context.Context, projectID string, nodes []*model.Node, edges []*model.Edge, replace bool) (int, int, error)
	ExportGraph(ctx context.Context, projectID string) ([]*model.Node, []*model.Edge, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
