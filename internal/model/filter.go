package model

// NodeFilter holds criteria for querying nodes within a project.
type NodeFilter struct {
	Status     []Status   `json:"status,omitempty"`
	Type       []NodeType `json:"type,omitempty"`
	DocumentID string     `json:"document_id,omitempty"`
	Search     string     `json:"search,omitempty"` // substring match on title/description
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
