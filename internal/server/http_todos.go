package server

import (
	"net/http"

	"github.com/meulenbelt/tendergraph/internal/todo"
)

// handleGetTodos handles GET /v1/projects/{project}/todos.
// Returns the derived to-do list: headline summary plus per-category items.
func (s *GraphServer) handleGetTodos(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	nodes, edges, err := s.store.ExportGraph(r.Context(), project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	gen := todo.NewGenerator(nodes, edges)
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    gen.Summarize(),
		"categories": gen.Generate(),
	})
}

// handleExportTodos handles GET /v1/projects/{project}/todos/export.
// Returns the to-do list rendered as a markdown document.
func (s *GraphServer) handleExportTodos(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	nodes, edges, err := s.store.ExportGraph(r.Context(), project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"markdown": todo.NewGenerator(nodes, edges).Markdown(),
	})
}
