package model

// EdgeType categorizes the semantic relationship an edge encodes.
type EdgeType string

const (
	EdgeRequires          EdgeType = "requires"
	EdgeRequiredBy        EdgeType = "required_by"
	EdgeConditionalOn     EdgeType = "conditional_on"
	EdgeTriggers          EdgeType = "triggers"
	EdgePartOf            EdgeType = "part_of"
	EdgeReferences        EdgeType = "references"
	EdgeMutuallyExclusive EdgeType = "mutually_exclusive"
	EdgeDependsOn         EdgeType = "depends_on"
)

// String returns the edge type as a string.
func (t EdgeType) String() string {
	return string(t)
}

// IsValid reports whether the edge type is one of the known values.
func (t EdgeType) IsValid() bool {
	switch t {
	case EdgeRequires, EdgeRequiredBy, EdgeConditionalOn, EdgeTriggers,
		EdgePartOf, EdgeReferences, EdgeMutuallyExclusive, EdgeDependsOn:
		return true
	}
	return false
}

// Edge is a typed directed relationship between two nodes.
type Edge struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"project_id,omitempty"`
	SourceNodeID string   `json:"source_node_id"`
	TargetNodeID string   `json:"target_node_id"`
	Type         EdgeType `json:"type"`
	Description  string   `json:"description,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
}
