// Package status implements the optimistic completion toggle: a speculative
// local mutation of the displayed element, a remote persistence call, and a
// revert when the remote write fails. Toggles never trigger a re-layout;
// only the element's style changes.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/model"
)

// ErrToggleInFlight reports that a node already has a pending persist.
// Overlapping toggles of the same node are rejected rather than queued.
var ErrToggleInFlight = errors.New("status: toggle already in flight for node")

// ItemSet resolves displayed items by node ID. *elements.Set implements it.
type ItemSet interface {
	Item(id string) (*elements.Item, bool)
}

// Syncer translates toggle gestures into an optimistic local mutation plus
// a remote persistence call.
//
// The toggle is split in two phases so an event-loop UI can stay the sole
// mutator of its element set: Begin and Commit/Revert touch the element
// and run on the loop, Persist is pure network and may run elsewhere.
// Toggle composes the phases for synchronous callers.
type Syncer struct {
	client  client.GraphClient
	project string
	items   ItemSet
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a syncer for one project's displayed element set.
func New(c client.GraphClient, project string, items ItemSet, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		client:   c,
		project:  project,
		items:    items,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Pending is a toggle that has been applied locally but not yet persisted.
type Pending struct {
	syncer *Syncer
	item   *elements.Item

	NodeID string
	Next   model.Status
	prev   model.Status
}

// Begin applies the speculative local status for one toggle and reserves
// the node's in-flight slot. Statuses outside the completed <->
// not_started cycle (in_progress, blocked, not_applicable) return a nil
// Pending with no error: there is nothing to persist and the element is
// untouched. After a non-nil Pending the caller must call Persist and
// then exactly one of Commit or Revert.
func (s *Syncer) Begin(nodeID string) (*Pending, error) {
	it, ok := s.items.Item(nodeID)
	if !ok {
		return nil, fmt.Errorf("status: unknown node %q", nodeID)
	}

	next, ok := it.Status.Toggled()
	if !ok {
		s.logger.Debug("toggle is a no-op", "node", nodeID, "status", it.Status)
		return nil, nil
	}

	s.mu.Lock()
	if _, busy := s.inflight[nodeID]; busy {
		s.mu.Unlock()
		return nil, ErrToggleInFlight
	}
	s.inflight[nodeID] = struct{}{}
	s.mu.Unlock()

	prev := it.Status
	it.SetStatus(next)
	return &Pending{syncer: s, item: it, NodeID: nodeID, Next: next, prev: prev}, nil
}

// Persist issues the remote status write. It never mutates the element,
// so it is safe to run off the UI loop while rendering continues.
func (p *Pending) Persist(ctx context.Context) error {
	req := &client.UpdateNodeRequest{Status: &p.Next}
	if _, err := p.syncer.client.UpdateNode(ctx, p.syncer.project, p.NodeID, req); err != nil {
		return fmt.Errorf("persisting status for %s: %w", p.NodeID, err)
	}
	return nil
}

// Commit keeps the applied status and releases the in-flight slot.
func (p *Pending) Commit() {
	p.syncer.release(p.NodeID)
}

// Revert restores the previous status, releases the in-flight slot, and
// returns the status the element shows again.
func (p *Pending) Revert() model.Status {
	p.item.SetStatus(p.prev)
	p.syncer.release(p.NodeID)
	return p.prev
}

// Toggle flips completed <-> not_started for one node and persists the new
// status. Statuses outside the two-way cycle are a no-op: no local change,
// no remote call. The local element is updated speculatively and reverted
// when the remote write fails, so the display never diverges from the
// store.
//
// Returns the status the element shows after the call.
func (s *Syncer) Toggle(ctx context.Context, nodeID string) (model.Status, error) {
	p, err := s.Begin(nodeID)
	if err != nil {
		if it, ok := s.items.Item(nodeID); ok {
			return it.Status, err
		}
		return "", err
	}
	if p == nil {
		it, _ := s.items.Item(nodeID)
		return it.Status, nil
	}
	if err := p.Persist(ctx); err != nil {
		return p.Revert(), err
	}
	p.Commit()
	return p.Next, nil
}

func (s *Syncer) release(nodeID string) {
	s.mu.Lock()
	delete(s.inflight, nodeID)
	s.mu.Unlock()
}
