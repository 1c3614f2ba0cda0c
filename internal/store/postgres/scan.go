package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanNode scans a single row into a model.Node.
// The row must contain columns in the order defined by nodeColumns.
func scanNode(row scannable) (*model.Node, error) {
	var n model.Node
	var (
		description    sql.NullString
		notes          sql.NullString
		documentID     sql.NullString
		sourceText     sql.NullString
		sourceLocation sql.NullString
		isChecked      sql.NullBool
		confidence     sql.NullFloat64
		tags           []byte
		deadline       sql.NullTime
	)

	err := row.Scan(
		&n.ID,
		&n.ProjectID,
		&n.Type,
		&n.Title,
		&description,
		&n.Status,
		&notes,
		&documentID,
		&sourceText,
		&sourceLocation,
		&isChecked,
		&confidence,
		&tags,
		&deadline,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Description = description.String
	n.Notes = notes.String
	n.DocumentID = documentID.String
	n.SourceText = sourceText.String
	n.SourceLocation = sourceLocation.String
	n.Confidence = confidence.Float64

	if isChecked.Valid {
		v := isChecked.Bool
		n.IsChecked = &v
	}
	if deadline.Valid {
		t := deadline.Time
		n.Deadline = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", n.ID, err)
		}
	}

	return &n, nil
}

// scanJoinedNode scans a row shaped by joinedNodeColumns: the node columns
// followed by the joined document filename.
func scanJoinedNode(row scannable) (*model.Node, error) {
	var n model.Node
	var (
		description    sql.NullString
		notes          sql.NullString
		documentID     sql.NullString
		sourceText     sql.NullString
		sourceLocation sql.NullString
		isChecked      sql.NullBool
		confidence     sql.NullFloat64
		tags           []byte
		deadline       sql.NullTime
		filename       sql.NullString
	)

	err := row.Scan(
		&n.ID,
		&n.ProjectID,
		&n.Type,
		&n.Title,
		&description,
		&n.Status,
		&notes,
		&documentID,
		&sourceText,
		&sourceLocation,
		&isChecked,
		&confidence,
		&tags,
		&deadline,
		&n.CreatedAt,
		&n.UpdatedAt,
		&filename,
	)
	if err != nil {
		return nil, err
	}

	n.Description = description.String
	n.Notes = notes.String
	n.DocumentID = documentID.String
	n.SourceText = sourceText.String
	n.SourceLocation = sourceLocation.String
	n.Confidence = confidence.Float64

	if isChecked.Valid {
		v := isChecked.Bool
		n.IsChecked = &v
	}
	if deadline.Valid {
		t := deadline.Time
		n.Deadline = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", n.ID, err)
		}
	}
	if filename.Valid && filename.String != "" {
		n.Document = &model.DocumentRef{Filename: filename.String}
	}

	return &n, nil
}

// scanNodeWithTotal scans a row that has a leading total_count column
// followed by the joined node columns. Used by queryListNodes with
// COUNT(*) OVER().
func scanNodeWithTotal(rows *sql.Rows) (*model.Node, int, error) {
	var total int
	var n model.Node
	var (
		description    sql.NullString
		notes          sql.NullString
		documentID     sql.NullString
		sourceText     sql.NullString
		sourceLocation sql.NullString
		isChecked      sql.NullBool
		confidence     sql.NullFloat64
		tags           []byte
		deadline       sql.NullTime
		filename       sql.NullString
	)

	err := rows.Scan(
		&total,
		&n.ID,
		&n.ProjectID,
		&n.Type,
		&n.Title,
		&description,
		&n.Status,
		&notes,
		&documentID,
		&sourceText,
		&sourceLocation,
		&isChecked,
		&confidence,
		&tags,
		&deadline,
		&n.CreatedAt,
		&n.UpdatedAt,
		&filename,
	)
	if err != nil {
		return nil, 0, err
	}

	n.Description = description.String
	n.Notes = notes.String
	n.DocumentID = documentID.String
	n.SourceText = sourceText.String
	n.SourceLocation = sourceLocation.String
	n.Confidence = confidence.Float64

	if isChecked.Valid {
		v := isChecked.Bool
		n.IsChecked = &v
	}
	if deadline.Valid {
		t := deadline.Time
		n.Deadline = &t
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, 0, fmt.Errorf("decode tags for %s: %w", n.ID, err)
		}
	}
	if filename.Valid && filename.String != "" {
		n.Document = &model.DocumentRef{Filename: filename.String}
	}

	return &n, total, nil
}

// scanEdge scans a single row into a model.Edge.
func scanEdge(row scannable) (*model.Edge, error) {
	var e model.Edge
	var (
		description sql.NullString
		confidence  sql.NullFloat64
	)
	err := row.Scan(
		&e.ID,
		&e.ProjectID,
		&e.SourceNodeID,
		&e.TargetNodeID,
		&e.Type,
		&description,
		&confidence,
	)
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Confidence = confidence.Float64
	return &e, nil
}

// scanEdges scans multiple rows into a slice of model.Edge pointers.
func scanEdges(rows *sql.Rows) ([]*model.Edge, error) {
	var edges []*model.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullBoolPtr converts a *bool to a sql.NullBool.
func nullBoolPtr(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// nullFloat converts a float64 to sql.NullFloat64; zero is null, matching
// the wire's omitempty treatment of confidence scores.
func nullFloat(f float64) sql.NullFloat64 {
	if f == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// tagsBytes converts a tag list to JSONB bytes; empty lists store as null.
func tagsBytes(tags []string) []byte {
	if len(tags) == 0 {
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return b
}
