package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateNode checks a Node for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the node is valid.
func ValidateNode(n *Node) error {
	var ve ValidationError

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(n.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	// Type and status: closed enum sets.
	if !n.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", n.Type),
		})
	}
	if !n.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", n.Status),
		})
	}

	// Confidence: extraction scores live in [0, 1].
	if n.Confidence < 0 || n.Confidence > 1 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "confidence",
			Message: fmt.Sprintf("must be between 0 and 1, got %g", n.Confidence),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateEdge checks an Edge for constraint violations.
func ValidateEdge(e *Edge) error {
	var ve ValidationError

	if strings.TrimSpace(e.SourceNodeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "source_node_id", Message: "is required"})
	}
	if strings.TrimSpace(e.TargetNodeID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "target_node_id", Message: "is required"})
	}
	if !e.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", e.Type),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
