package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/todo"
)

func TestHandleGetTodos(t *testing.T) {
	_, ms, _, handler := newTestServer()
	seedGraph(ms)

	rec := doJSON(t, handler, "GET", "/v1/projects/tender-42/todos", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Summary    todo.Summary `json:"summary"`
		Categories []struct {
			Name  string `json:"name"`
			Items []struct {
				ID       string       `json:"id"`
				Priority string       `json:"priority"`
				Status   model.Status `json:"status"`
			} `json:"items"`
		} `json:"categories"`
	}
	decodeJSON(t, rec, &resp)

	// Seed graph: nd-a requirement completed, nd-b checkbox, nd-c deadline.
	if resp.Summary.TotalItems != 3 {
		t.Errorf("total_items = %d, want 3", resp.Summary.TotalItems)
	}
	if resp.Summary.CompletedItems != 1 {
		t.Errorf("completed_items = %d, want 1", resp.Summary.CompletedItems)
	}
	if len(resp.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(resp.Categories))
	}

	var deadlineCat *struct {
		Name  string `json:"name"`
		Items []struct {
			ID       string       `json:"id"`
			Priority string       `json:"priority"`
			Status   model.Status `json:"status"`
		} `json:"items"`
	}
	for i := range resp.Categories {
		if resp.Categories[i].Name == "Deadlines to Track" {
			deadlineCat = &resp.Categories[i]
		}
	}
	if deadlineCat == nil {
		t.Fatalf("no deadline category in %+v", resp.Categories)
	}
	if len(deadlineCat.Items) != 1 || deadlineCat.Items[0].Priority != "CRITICAL" {
		t.Errorf("deadline items = %+v, want one CRITICAL", deadlineCat.Items)
	}
}

func TestHandleGetTodos_EmptyProject(t *testing.T) {
	_, _, _, handler := newTestServer()

	rec := doJSON(t, handler, "GET", "/v1/projects/tender-99/todos", nil)
	requireStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	if !strings.Contains(body, `"categories":[]`) {
		t.Errorf("expected empty categories, got %s", body)
	}
	if !strings.Contains(body, `"completion_percentage":100`) {
		t.Errorf("expected 100%% for empty project, got %s", body)
	}
}

func TestHandleExportTodos(t *testing.T) {
	_, ms, _, handler := newTestServer()
	seedGraph(ms)

	rec := doJSON(t, handler, "GET", "/v1/projects/tender-42/todos/export", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Markdown string `json:"markdown"`
	}
	decodeJSON(t, rec, &resp)

	for _, want := range []string{
		"# Tender Requirements To-Do List",
		"## Summary",
		"- **Total Items:** 3",
	} {
		if !strings.Contains(resp.Markdown, want) {
			t.Errorf("markdown missing %q\n---\n%s", want, resp.Markdown)
		}
	}
}
