package status

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
)

type updateCall struct {
	project string
	node    string
	status  model.Status
}

// fakeClient records UpdateNode calls and can fail or block on demand.
type fakeClient struct {
	mu      sync.Mutex
	updates []updateCall
	err     error

	entered chan struct{} // signaled when UpdateNode is reached
	release chan struct{} // UpdateNode waits on this when non-nil
}

func (f *fakeClient) UpdateNode(ctx context.Context, projectID, nodeID string, req *client.UpdateNodeRequest) (*model.Node, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Status != nil {
		f.updates = append(f.updates, updateCall{projectID, nodeID, *req.Status})
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.Node{ID: nodeID, Status: *req.Status}, nil
}

func (f *fakeClient) calls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]updateCall, len(f.updates))
	copy(out, f.updates)
	return out
}

func (f *fakeClient) FetchGraph(context.Context, string) (*model.GraphResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) GetNode(context.Context, string, string) (*model.Node, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) Stats(context.Context, string) (*model.GraphStats, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) ListProjects(context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) ImportGraph(context.Context, string, *client.ImportRequest) (*client.ImportResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) ExportGraph(context.Context, string) (*client.ExportResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) Health(context.Context) (string, error) { return "", errors.New("not implemented") }
func (f *fakeClient) Close() error                           { return nil }

func buildSet(status model.Status) *elements.Set {
	return elements.Build([]*model.Node{
		{ID: "nd-1", Type: model.TypeRequirement, Title: "Item", Status: status},
	}, nil)
}

func TestToggle_NotStartedToCompleted(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	fc := &fakeClient{}
	s := New(fc, "tender-42", set, nil)

	got, err := s.Toggle(context.Background(), "nd-1")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got != model.StatusCompleted {
		t.Errorf("status = %q, want 'completed'", got)
	}

	it, _ := set.Item("nd-1")
	if it.Status != model.StatusCompleted {
		t.Errorf("item status = %q, want 'completed'", it.Status)
	}
	if it.Label != "Item ✓" {
		t.Errorf("item label = %q, want 'Item ✓'", it.Label)
	}

	calls := fc.calls()
	if len(calls) != 1 {
		t.Fatalf("update calls = %d, want 1", len(calls))
	}
	if calls[0].project != "tender-42" || calls[0].node != "nd-1" {
		t.Errorf("call = %+v, want project tender-42, node nd-1", calls[0])
	}
	if calls[0].status != model.StatusCompleted {
		t.Errorf("persisted status = %q, want 'completed'", calls[0].status)
	}
}

func TestToggle_CompletedToNotStarted(t *testing.T) {
	set := buildSet(model.StatusCompleted)
	fc := &fakeClient{}
	s := New(fc, "tender-42", set, nil)

	got, err := s.Toggle(context.Background(), "nd-1")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got != model.StatusNotStarted {
		t.Errorf("status = %q, want 'not_started'", got)
	}

	it, _ := set.Item("nd-1")
	if it.Label != "Item" {
		t.Errorf("item label = %q, want 'Item' (no glyph)", it.Label)
	}
}

func TestToggle_NonCyclableIsNoOp(t *testing.T) {
	for _, st := range []model.Status{
		model.StatusInProgress,
		model.StatusBlocked,
		model.StatusNotApplicable,
	} {
		t.Run(string(st), func(t *testing.T) {
			set := buildSet(st)
			fc := &fakeClient{}
			s := New(fc, "tender-42", set, nil)

			got, err := s.Toggle(context.Background(), "nd-1")
			if err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}
			if got != st {
				t.Errorf("status = %q, want unchanged %q", got, st)
			}
			if len(fc.calls()) != 0 {
				t.Errorf("update calls = %d, want 0 (no remote call on no-op)", len(fc.calls()))
			}
		})
	}
}

func TestToggle_PersistFailureReverts(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	fc := &fakeClient{err: errors.New("connection refused")}
	s := New(fc, "tender-42", set, nil)

	got, err := s.Toggle(context.Background(), "nd-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got != model.StatusNotStarted {
		t.Errorf("status = %q, want reverted 'not_started'", got)
	}

	it, _ := set.Item("nd-1")
	if it.Status != model.StatusNotStarted {
		t.Errorf("item status = %q, want reverted 'not_started'", it.Status)
	}
	if it.Label != "Item" {
		t.Errorf("item label = %q, want reverted 'Item'", it.Label)
	}
}

func TestToggle_UnknownNode(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	s := New(&fakeClient{}, "tender-42", set, nil)

	if _, err := s.Toggle(context.Background(), "nd-missing"); err == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestToggle_OverlappingTogglesRejected(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	fc := &fakeClient{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := New(fc, "tender-42", set, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Toggle(context.Background(), "nd-1")
		done <- err
	}()

	<-fc.entered // first toggle is mid-flight

	if _, err := s.Toggle(context.Background(), "nd-1"); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("second toggle error = %v, want ErrToggleInFlight", err)
	}

	close(fc.release)
	if err := <-done; err != nil {
		t.Fatalf("first toggle error = %v", err)
	}

	if len(fc.calls()) != 1 {
		t.Errorf("update calls = %d, want 1", len(fc.calls()))
	}
}

func TestBegin_AppliesBeforePersist(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	fc := &fakeClient{}
	s := New(fc, "tender-42", set, nil)

	p, err := s.Begin("nd-1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if p == nil {
		t.Fatal("Begin() = nil Pending for cyclable status")
	}
	if p.Next != model.StatusCompleted {
		t.Errorf("Next = %q, want 'completed'", p.Next)
	}

	it, _ := set.Item("nd-1")
	if it.Status != model.StatusCompleted {
		t.Errorf("item status = %q before persist, want speculative 'completed'", it.Status)
	}
	if len(fc.calls()) != 0 {
		t.Errorf("update calls = %d before Persist, want 0", len(fc.calls()))
	}

	if err := p.Persist(context.Background()); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	p.Commit()

	calls := fc.calls()
	if len(calls) != 1 || calls[0].status != model.StatusCompleted {
		t.Errorf("calls = %+v, want one 'completed' update", calls)
	}

	// The slot is free again after Commit.
	p2, err := s.Begin("nd-1")
	if err != nil || p2 == nil {
		t.Fatalf("Begin() after Commit = (%v, %v), want pending toggle back", p2, err)
	}
	p2.Revert()
}

func TestBegin_NonCyclableReturnsNil(t *testing.T) {
	set := buildSet(model.StatusBlocked)
	s := New(&fakeClient{}, "tender-42", set, nil)

	p, err := s.Begin("nd-1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if p != nil {
		t.Fatalf("Begin() = %+v for blocked node, want nil (nothing to persist)", p)
	}

	it, _ := set.Item("nd-1")
	if it.Status != model.StatusBlocked {
		t.Errorf("item status = %q, want untouched 'blocked'", it.Status)
	}
}

func TestBegin_RejectsOverlap(t *testing.T) {
	set := buildSet(model.StatusNotStarted)
	s := New(&fakeClient{}, "tender-42", set, nil)

	p, err := s.Begin("nd-1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := s.Begin("nd-1"); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("second Begin error = %v, want ErrToggleInFlight", err)
	}
	p.Revert()

	// Revert released the slot.
	if _, err := s.Begin("nd-1"); err != nil {
		t.Errorf("Begin() after Revert error = %v", err)
	}
}

func TestPending_RevertRestoresLabel(t *testing.T) {
	set := buildSet(model.StatusCompleted)
	s := New(&fakeClient{}, "tender-42", set, nil)

	p, err := s.Begin("nd-1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	it, _ := set.Item("nd-1")
	if it.Label != "Item" {
		t.Fatalf("label = %q after Begin, want 'Item'", it.Label)
	}

	if got := p.Revert(); got != model.StatusCompleted {
		t.Errorf("Revert() = %q, want 'completed'", got)
	}
	if it.Status != model.StatusCompleted || it.Label != "Item ✓" {
		t.Errorf("item = (%q, %q), want restored ('completed', 'Item ✓')", it.Status, it.Label)
	}
}

func TestToggle_DoesNotMovePositionedItem(t *testing.T) {
	set := elements.Build([]*model.Node{
		{ID: "nd-1", Type: model.TypeRequirement, Title: "Item", Status: model.StatusNotStarted,
			DocumentID: "D1", Document: &model.DocumentRef{Filename: "spec.pdf"}},
	}, nil)
	d := layout.New(layout.DefaultParams()).Layout(set)
	before, _ := d.Item("nd-1")
	x, y := before.X, before.Y

	s := New(&fakeClient{}, "tender-42", set, nil)
	if _, err := s.Toggle(context.Background(), "nd-1"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	after, _ := d.Item("nd-1")
	if after.X != x || after.Y != y {
		t.Errorf("position moved to (%v,%v), want unchanged (%v,%v)", after.X, after.Y, x, y)
	}
	if after.Item.Status != model.StatusCompleted {
		t.Errorf("positioned item status = %q, want 'completed' (style updated in place)", after.Item.Status)
	}
}
