// Package model defines the core domain types for tendergraph:
// requirement-graph nodes, typed edges, and the aggregate graph payload
// exchanged with the API.
package model

import "time"

// Status is the completion state of a node.
type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusInProgress    Status = "in_progress"
	StatusCompleted     Status = "completed"
	StatusNotApplicable Status = "not_applicable"
	StatusBlocked       Status = "blocked"
)

// String returns the status as a string.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusNotApplicable, StatusBlocked:
		return true
	}
	return false
}

// Toggled returns the status reached by the two-way completion toggle and
// whether the toggle applies. Only completed and not_started cycle into each
// other; every other status is left unchanged (ok = false).
func (s Status) Toggled() (Status, bool) {
	switch s {
	case StatusCompleted:
		return StatusNotStarted, true
	case StatusNotStarted:
		return StatusCompleted, true
	}
	return s, false
}

// NodeType categorizes what kind of extracted item a node represents.
type NodeType string

const (
	TypeDocument    NodeType = "document"
	TypeRequirement NodeType = "requirement"
	TypeCondition   NodeType = "condition"
	TypeCheckbox    NodeType = "checkbox"
	TypeSignature   NodeType = "signature"
	TypeField       NodeType = "field"
	TypeAttachment  NodeType = "attachment"
	TypeDeadline    NodeType = "deadline"
)

// String returns the node type as a string.
func (t NodeType) String() string {
	return string(t)
}

// IsValid reports whether the node type is one of the known values.
func (t NodeType) IsValid() bool {
	switch t {
	case TypeDocument, TypeRequirement, TypeCondition, TypeCheckbox,
		TypeSignature, TypeField, TypeAttachment, TypeDeadline:
		return true
	}
	return false
}

// DocumentRef is the joined source-document record attached to a node.
// The wire name "documents" matches the relational join emitted by the API.
type DocumentRef struct {
	Filename string `json:"filename"`
}

// Node is a single extracted requirement-graph item.
type Node struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"project_id,omitempty"`
	Type        NodeType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Notes       string   `json:"notes,omitempty"`

	// DocumentID links the node to the source document it was extracted
	// from. Nodes without one are free-standing.
	DocumentID string `json:"document_id,omitempty"`

	SourceText     string `json:"source_text,omitempty"`
	SourceLocation string `json:"source_location,omitempty"`

	// IsChecked mirrors a checkbox's state in the source document.
	// Nil means the node is not a checkbox or the state is unknown.
	IsChecked *bool `json:"is_checked,omitempty"`

	Confidence float64    `json:"confidence,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relational data -- populated by queries.
	Document *DocumentRef `json:"documents,omitempty"`
}

// DocumentName returns the display name of the node's source document,
// or "" when no document is joined or the filename is empty.
func (n *Node) DocumentName() string {
	if n.Document == nil {
		return ""
	}
	return n.Document.Filename
}
