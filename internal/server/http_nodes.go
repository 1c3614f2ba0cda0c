package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/meulenbelt/tendergraph/internal/events"
	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/store"
)

// handleGetNode handles GET /v1/projects/{project}/nodes/{id}.
func (s *GraphServer) handleGetNode(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	id := r.PathValue("id")

	node, err := s.store.GetNode(r.Context(), project, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get node")
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// updateNodeInput is the accepted PUT body. Only status, notes, and
// is_checked are updatable over the wire; anything else in the payload is
// ignored.
type updateNodeInput struct {
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
	IsChecked *bool   `json:"is_checked"`
}

// handleUpdateNode handles PUT /v1/projects/{project}/nodes/{id}.
func (s *GraphServer) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	id := r.PathValue("id")

	var in updateNodeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := store.NodeUpdate{
		Notes:     in.Notes,
		IsChecked: in.IsChecked,
	}
	if in.Status != nil {
		st := model.Status(*in.Status)
		if !st.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", *in.Status))
			return
		}
		upd.Status = &st
	}
	if upd.IsEmpty() {
		writeError(w, http.StatusBadRequest, "no updatable fields provided")
		return
	}

	// Read the current row first so status transitions can be reported.
	old, err := s.store.GetNode(r.Context(), project, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get node")
		return
	}

	node, err := s.store.UpdateNode(r.Context(), project, id, upd)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update node")
		return
	}

	changes := make(map[string]any)
	if upd.Status != nil {
		changes["status"] = *upd.Status
	}
	if upd.Notes != nil {
		changes["notes"] = *upd.Notes
	}
	if upd.IsChecked != nil {
		changes["is_checked"] = *upd.IsChecked
	}
	s.publishEvent(r.Context(), events.TopicNodeUpdated, events.NodeUpdated{
		ProjectID: project,
		Node:      node,
		Changes:   changes,
	})
	if upd.Status != nil && old.Status != node.Status {
		s.publishEvent(r.Context(), events.TopicNodeStatusChanged, events.NodeStatusChanged{
			ProjectID: project,
			NodeID:    node.ID,
			OldStatus: old.Status,
			NewStatus: node.Status,
		})
	}

	writeJSON(w, http.StatusOK, node)
}
