package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	requestURI  string
	query       string
	body        string
	contentType string
	authHeader  string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.requestURI = r.RequestURI
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.authHeader = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, "")
	return c, srv
}

// --- FetchGraph ---

func TestHTTPClient_FetchGraph(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"nodes": [
				{
					"id": "nd-1",
					"project_id": "tender-42",
					"type": "requirement",
					"title": "Submit proof of insurance",
					"status": "not_started",
					"document_id": "doc-a",
					"confidence": 0.92,
					"created_at": "2026-03-01T10:00:00Z",
					"updated_at": "2026-03-01T10:00:00Z",
					"documents": {"filename": "tender_terms.pdf"}
				},
				{
					"id": "nd-2",
					"project_id": "tender-42",
					"type": "checkbox",
					"title": "Accept conditions",
					"status": "completed",
					"is_checked": true,
					"created_at": "2026-03-01T10:00:00Z",
					"updated_at": "2026-03-02T08:00:00Z"
				}
			],
			"edges": [
				{"id": "ed-1", "source_node_id": "nd-1", "target_node_id": "nd-2", "type": "requires"}
			],
			"total_nodes": 2,
			"total_edges": 1
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	graph, err := c.FetchGraph(context.Background(), "tender-42")
	if err != nil {
		t.Fatalf("FetchGraph() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/projects/tender-42/graph" {
		t.Errorf("path = %q, want /v1/projects/tender-42/graph", h.path)
	}
	if h.contentType != "" {
		t.Errorf("GET should not have Content-Type, got %q", h.contentType)
	}

	if len(graph.Nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(graph.Nodes))
	}
	if len(graph.Edges) != 1 {
		t.Fatalf("len(edges) = %d, want 1", len(graph.Edges))
	}
	if graph.TotalNodes != 2 {
		t.Errorf("total_nodes = %d, want 2", graph.TotalNodes)
	}
	if graph.TotalEdges != 1 {
		t.Errorf("total_edges = %d, want 1", graph.TotalEdges)
	}
	if graph.Nodes[0].ID != "nd-1" {
		t.Errorf("nodes[0].ID = %q, want 'nd-1'", graph.Nodes[0].ID)
	}
	if graph.Nodes[0].Type != model.TypeRequirement {
		t.Errorf("nodes[0].Type = %q, want 'requirement'", graph.Nodes[0].Type)
	}
	if graph.Nodes[0].DocumentName() != "tender_terms.pdf" {
		t.Errorf("nodes[0].DocumentName() = %q, want 'tender_terms.pdf'", graph.Nodes[0].DocumentName())
	}
	if graph.Nodes[1].Status != model.StatusCompleted {
		t.Errorf("nodes[1].Status = %q, want 'completed'", graph.Nodes[1].Status)
	}
	if graph.Nodes[1].IsChecked == nil || !*graph.Nodes[1].IsChecked {
		t.Error("nodes[1].IsChecked = nil or false, want true")
	}
	if graph.Edges[0].SourceNodeID != "nd-1" {
		t.Errorf("edges[0].SourceNodeID = %q, want 'nd-1'", graph.Edges[0].SourceNodeID)
	}
	if graph.Edges[0].Type != model.EdgeRequires {
		t.Errorf("edges[0].Type = %q, want 'requires'", graph.Edges[0].Type)
	}
}

func TestHTTPClient_FetchGraph_Empty(t *testing.T) {
	h := &testHandler{
		responseBody: `{"nodes": [], "edges": [], "total_nodes": 0, "total_edges": 0}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	graph, err := c.FetchGraph(context.Background(), "tender-empty")
	if err != nil {
		t.Fatalf("FetchGraph() error = %v", err)
	}
	if len(graph.Nodes) != 0 {
		t.Errorf("len(nodes) = %d, want 0", len(graph.Nodes))
	}
	if len(graph.Edges) != 0 {
		t.Errorf("len(edges) = %d, want 0", len(graph.Edges))
	}
}

func TestHTTPClient_FetchGraph_URLEscaping(t *testing.T) {
	h := &testHandler{
		responseBody: `{"nodes": [], "edges": [], "total_nodes": 0, "total_edges": 0}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.FetchGraph(context.Background(), "tender/special")
	if err != nil {
		t.Fatalf("FetchGraph() error = %v", err)
	}

	// The slash in the project ID should be URL-escaped on the wire.
	// r.URL.Path is decoded by the Go HTTP server, so we check requestURI.
	wantURI := "/v1/projects/tender%2Fspecial/graph"
	if h.requestURI != wantURI {
		t.Errorf("requestURI = %q, want %q", h.requestURI, wantURI)
	}
}

// --- Stats ---

func TestHTTPClient_Stats(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"total_nodes": 10,
			"by_status": {
				"not_started": 4,
				"in_progress": 1,
				"completed": 3,
				"not_applicable": 2,
				"blocked": 0
			},
			"completion_percentage": 37.5,
			"applicable_items": 8,
			"completed_items": 3
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	stats, err := c.Stats(context.Background(), "tender-42")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/projects/tender-42/graph/stats" {
		t.Errorf("path = %q, want /v1/projects/tender-42/graph/stats", h.path)
	}

	if stats.TotalNodes != 10 {
		t.Errorf("total_nodes = %d, want 10", stats.TotalNodes)
	}
	if stats.ByStatus[model.StatusNotStarted] != 4 {
		t.Errorf("by_status[not_started] = %d, want 4", stats.ByStatus[model.StatusNotStarted])
	}
	if stats.CompletionPercentage != 37.5 {
		t.Errorf("completion_percentage = %v, want 37.5", stats.CompletionPercentage)
	}
	if stats.ApplicableItems != 8 {
		t.Errorf("applicable_items = %d, want 8", stats.ApplicableItems)
	}
	if stats.CompletedItems != 3 {
		t.Errorf("completed_items = %d, want 3", stats.CompletedItems)
	}
}

// --- ListProjects ---

func TestHTTPClient_ListProjects(t *testing.T) {
	h := &testHandler{
		responseBody: `{"projects": ["tender-17", "tender-42"], "total": 2}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if h.path != "/v1/projects" {
		t.Errorf("path = %q, want /v1/projects", h.path)
	}
	if len(projects) != 2 || projects[0] != "tender-17" || projects[1] != "tender-42" {
		t.Errorf("projects = %v", projects)
	}
}

// --- GetNode ---

func TestHTTPClient_GetNode(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": "nd-get",
			"project_id": "tender-42",
			"type": "signature",
			"title": "Sign the offer form",
			"status": "not_started",
			"created_at": "2026-03-01T10:00:00Z",
			"updated_at": "2026-03-01T10:00:00Z"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	node, err := c.GetNode(context.Background(), "tender-42", "nd-get")
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/projects/tender-42/nodes/nd-get" {
		t.Errorf("path = %q, want /v1/projects/tender-42/nodes/nd-get", h.path)
	}
	if node.ID != "nd-get" {
		t.Errorf("node.ID = %q, want 'nd-get'", node.ID)
	}
	if node.Type != model.TypeSignature {
		t.Errorf("node.Type = %q, want 'signature'", node.Type)
	}
}

// --- UpdateNode ---

func TestHTTPClient_UpdateNode(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": "nd-upd",
			"project_id": "tender-42",
			"type": "requirement",
			"title": "Submit proof of insurance",
			"status": "completed",
			"created_at": "2026-03-01T10:00:00Z",
			"updated_at": "2026-03-05T16:00:00Z"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status := model.StatusCompleted
	node, err := c.UpdateNode(context.Background(), "tender-42", "nd-upd", &UpdateNodeRequest{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("UpdateNode() error = %v", err)
	}

	if h.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", h.method)
	}
	if h.path != "/v1/projects/tender-42/nodes/nd-upd" {
		t.Errorf("path = %q, want /v1/projects/tender-42/nodes/nd-upd", h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}

	// Verify request body has only the set fields
	var reqBody map[string]interface{}
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["status"] != "completed" {
		t.Errorf("request body status = %v, want 'completed'", reqBody["status"])
	}
	if _, ok := reqBody["notes"]; ok {
		t.Error("request body should not contain 'notes' when nil")
	}
	if _, ok := reqBody["is_checked"]; ok {
		t.Error("request body should not contain 'is_checked' when nil")
	}

	if node.ID != "nd-upd" {
		t.Errorf("node.ID = %q, want 'nd-upd'", node.ID)
	}
	if node.Status != model.StatusCompleted {
		t.Errorf("node.Status = %q, want 'completed'", node.Status)
	}
}

func TestHTTPClient_UpdateNode_NotesAndChecked(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "nd-n", "type": "checkbox", "title": "X", "status": "not_started", "notes": "reviewed", "is_checked": true, "created_at": "2026-03-01T10:00:00Z", "updated_at": "2026-03-01T10:00:00Z"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	notes := "reviewed"
	checked := true
	node, err := c.UpdateNode(context.Background(), "tender-42", "nd-n", &UpdateNodeRequest{
		Notes:     &notes,
		IsChecked: &checked,
	})
	if err != nil {
		t.Fatalf("UpdateNode() error = %v", err)
	}

	var reqBody map[string]interface{}
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["notes"] != "reviewed" {
		t.Errorf("request body notes = %v, want 'reviewed'", reqBody["notes"])
	}
	if reqBody["is_checked"] != true {
		t.Errorf("request body is_checked = %v, want true", reqBody["is_checked"])
	}
	if _, ok := reqBody["status"]; ok {
		t.Error("request body should not contain 'status' when nil")
	}
	if node.Notes != "reviewed" {
		t.Errorf("node.Notes = %q, want 'reviewed'", node.Notes)
	}
}

// --- ImportGraph ---

func TestHTTPClient_ImportGraph(t *testing.T) {
	h := &testHandler{
		responseBody: `{"nodes_imported": 2, "edges_imported": 1}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ImportGraph(context.Background(), "tender-42", &ImportRequest{
		Nodes: []*model.Node{
			{ID: "nd-1", Type: model.TypeRequirement, Title: "A", Status: model.StatusNotStarted},
			{ID: "nd-2", Type: model.TypeCondition, Title: "B", Status: model.StatusNotStarted},
		},
		Edges: []*model.Edge{
			{ID: "ed-1", SourceNodeID: "nd-1", TargetNodeID: "nd-2", Type: model.EdgeRequires},
		},
		Replace: true,
	})
	if err != nil {
		t.Fatalf("ImportGraph() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/projects/tender-42/import" {
		t.Errorf("path = %q, want /v1/projects/tender-42/import", h.path)
	}

	var reqBody map[string]interface{}
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	nodes, ok := reqBody["nodes"].([]interface{})
	if !ok || len(nodes) != 2 {
		t.Errorf("request body nodes = %v, want 2 entries", reqBody["nodes"])
	}
	if reqBody["replace"] != true {
		t.Errorf("request body replace = %v, want true", reqBody["replace"])
	}

	if resp.NodesImported != 2 {
		t.Errorf("nodes_imported = %d, want 2", resp.NodesImported)
	}
	if resp.EdgesImported != 1 {
		t.Errorf("edges_imported = %d, want 1", resp.EdgesImported)
	}
}

// --- ExportGraph ---

func TestHTTPClient_ExportGraph(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"project_id": "tender-42",
			"nodes": [
				{"id": "nd-1", "type": "requirement", "title": "A", "status": "completed", "created_at": "2026-03-01T10:00:00Z", "updated_at": "2026-03-01T10:00:00Z"}
			],
			"edges": [],
			"exported_at": "2026-03-10T12:00:00Z"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ExportGraph(context.Background(), "tender-42")
	if err != nil {
		t.Fatalf("ExportGraph() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/projects/tender-42/export" {
		t.Errorf("path = %q, want /v1/projects/tender-42/export", h.path)
	}

	if resp.ProjectID != "tender-42" {
		t.Errorf("project_id = %q, want 'tender-42'", resp.ProjectID)
	}
	if len(resp.Nodes) != 1 {
		t.Fatalf("len(nodes) = %d, want 1", len(resp.Nodes))
	}
	if resp.ExportedAt.IsZero() {
		t.Error("exported_at is zero, want parsed timestamp")
	}
}

// --- Health ---

func TestHTTPClient_Health(t *testing.T) {
	h := &testHandler{
		responseBody: `{"status": "ok"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/health" {
		t.Errorf("path = %q, want /v1/health", h.path)
	}

	if status != "ok" {
		t.Errorf("status = %q, want 'ok'", status)
	}
}

// --- Authorization ---

func TestHTTPClient_BearerToken(t *testing.T) {
	h := &testHandler{
		responseBody: `{"status": "ok"}`,
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	if h.authHeader != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want 'Bearer secret-token'", h.authHeader)
	}
}

func TestHTTPClient_NoToken(t *testing.T) {
	h := &testHandler{
		responseBody: `{"status": "ok"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	if h.authHeader != "" {
		t.Errorf("Authorization = %q, want empty when no token is set", h.authHeader)
	}
}

// --- Error handling ---

func TestHTTPClient_Error_JSONBody(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusUnauthorized,
		responseBody: `{"error": "Missing authorization header"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.FetchGraph(context.Background(), "tender-42")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message != "Missing authorization header" {
		t.Errorf("message = %q, want 'Missing authorization header'", apiErr.Message)
	}
}

func TestHTTPClient_Error_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.FetchGraph(context.Background(), "tender-42")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "internal server error" {
		t.Errorf("message = %q, want 'internal server error'", apiErr.Message)
	}
}

func TestHTTPClient_Error_404(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusNotFound,
		responseBody: `{"error": "Node not found"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status := model.StatusCompleted
	_, err := c.UpdateNode(context.Background(), "tender-42", "nonexistent", &UpdateNodeRequest{Status: &status})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "Node not found" {
		t.Errorf("message = %q, want 'Node not found'", apiErr.Message)
	}
}

func TestHTTPClient_Error_FormatString(t *testing.T) {
	apiErr := &APIError{StatusCode: 403, Message: "forbidden"}
	want := "HTTP 403: forbidden"
	if apiErr.Error() != want {
		t.Errorf("Error() = %q, want %q", apiErr.Error(), want)
	}
}

func TestHTTPClient_Error_EmptyJSONError(t *testing.T) {
	// JSON body with empty error field should use the raw body
	h := &testHandler{
		statusCode:   http.StatusUnprocessableEntity,
		responseBody: `{"error": ""}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.FetchGraph(context.Background(), "tender-42")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", apiErr.StatusCode)
	}
	// When errResp.Error is empty, the raw body is used as the message
	if apiErr.Message != `{"error": ""}` {
		t.Errorf("message = %q, want raw body", apiErr.Message)
	}
}

func TestHTTPClient_Error_CanceledContext(t *testing.T) {
	h := &testHandler{
		responseBody: `{"status": "ok"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
	// The error should wrap context.Canceled
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("error = %q, want to contain 'context canceled'", err.Error())
	}
}

// --- Close ---

func TestHTTPClient_Close(t *testing.T) {
	c := NewHTTPClient("http://localhost:9999", "")
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

// --- NewHTTPClient base URL trimming ---

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c := NewHTTPClient("http://localhost:8080/", "")
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want 'http://localhost:8080'", c.baseURL)
	}
}

// --- Interface compliance ---

func TestHTTPClient_ImplementsGraphClient(t *testing.T) {
	var _ GraphClient = (*HTTPClient)(nil)
}

// --- Concurrent requests ---

func TestHTTPClient_ConcurrentRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := c.Health(context.Background())
			errs <- err
		}()
	}

	for i := 0; i < 10; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent Health() error = %v", err)
		}
	}
}
