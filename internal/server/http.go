package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *GraphServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	mux.HandleFunc("GET /v1/projects/{project}/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/projects/{project}/graph/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/projects/{project}/nodes/{id}", s.handleGetNode)
	mux.HandleFunc("PUT /v1/projects/{project}/nodes/{id}", s.handleUpdateNode)
	mux.HandleFunc("POST /v1/projects/{project}/import", s.handleImportGraph)
	mux.HandleFunc("GET /v1/projects/{project}/export", s.handleExportGraph)
	mux.HandleFunc("GET /v1/projects/{project}/todos", s.handleGetTodos)
	mux.HandleFunc("GET /v1/projects/{project}/todos/export", s.handleExportTodos)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var h http.Handler = AuthMiddleware(authToken, mux)
	h = RecoveryMiddleware(h)
	h = LoggingMiddleware(h)
	return h
}

// handleHealth handles GET /v1/health.
func (s *GraphServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
