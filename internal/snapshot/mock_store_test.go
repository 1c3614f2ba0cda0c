package snapshot

import (
	"context"
	"sort"

	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/store"
)

// mockStore is a minimal in-memory store for snapshot tests.
type mockStore struct {
	nodes map[string][]*model.Node // project id -> nodes
	edges map[string][]*model.Edge
}

func newMockStore() *mockStore {
	return &mockStore{
		nodes: make(map[string][]*model.Node),
		edges: make(map[string][]*model.Edge),
	}
}

func (m *mockStore) GetGraph(_ context.Context, projectID string, _ model.NodeFilter) (*model.GraphResponse, error) {
	return &model.GraphResponse{
		Nodes:      m.nodes[projectID],
		Edges:      m.edges[projectID],
		TotalNodes: len(m.nodes[projectID]),
		TotalEdges: len(m.edges[projectID]),
	}, nil
}

func (m *mockStore) GetStats(_ context.Context, projectID string) (*model.GraphStats, error) {
	return &model.GraphStats{TotalNodes: len(m.nodes[projectID])}, nil
}

func (m *mockStore) ListProjects(_ context.Context) ([]string, error) {
	var projects []string
	for p := range m.nodes {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects, nil
}

func (m *mockStore) GetNode(_ context.Context, projectID, nodeID string) (*model.Node, error) {
	for _, n := range m.nodes[projectID] {
		if n.ID == nodeID {
			return n, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateNode(_ context.Context, projectID, nodeID string, _ store.NodeUpdate) (*model.Node, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) ImportGraph(_ context.Context, projectID string, nodes []*model.Node, edges []*model.Edge, replace bool) (int, int, error) {
	if replace {
		m.nodes[projectID] = nil
		m.edges[projectID] = nil
	}
	m.nodes[projectID] = append(m.nodes[projectID], nodes...)
	m.edges[projectID] = append(m.edges[projectID], edges...)
	return len(nodes), len(edges), nil
}

func (m *mockStore) ExportGraph(_ context.Context, projectID string) ([]*model.Node, []*model.Edge, error) {
	return m.nodes[projectID], m.edges[projectID], nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
