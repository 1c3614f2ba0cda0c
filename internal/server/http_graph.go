package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// handleGetGraph handles GET /v1/projects/{project}/graph.
// Returns the project's nodes (with joined source-document names) and the
// edges whose endpoints both survived the filter.
func (s *GraphServer) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	if project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	graph, err := s.store.GetGraph(r.Context(), project, nodeFilterFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get graph")
		return
	}

	writeJSON(w, http.StatusOK, graph)
}

// nodeFilterFromQuery builds a NodeFilter from request query parameters.
func nodeFilterFromQuery(r *http.Request) model.NodeFilter {
	q := r.URL.Query()
	filter := model.NodeFilter{
		DocumentID: q.Get("document"),
		Search:     q.Get("search"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.Status(strings.TrimSpace(st)))
		}
	}
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Type = append(filter.Type, model.NodeType(strings.TrimSpace(t)))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Offset = n
		}
	}

	return filter
}

// handleGetStats handles GET /v1/projects/{project}/graph/stats.
func (s *GraphServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	if project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	stats, err := s.store.GetStats(r.Context(), project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleListProjects handles GET /v1/projects.
func (s *GraphServer) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	// Ensure projects is never null in JSON output.
	if projects == nil {
		projects = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"total":    len(projects),
	})
}
