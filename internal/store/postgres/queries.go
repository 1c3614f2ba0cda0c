package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/store"
)

// nodeColumns is the column list used for SELECT statements on the nodes table.
const nodeColumns = `id, project_id, type, title, description, status, notes,
	document_id, source_text, source_location, is_checked, confidence, tags,
	deadline, created_at, updated_at`

// joinedNodeColumns is nodeColumns qualified for the nodes-documents join,
// with the source filename appended.
const joinedNodeColumns = `n.id, n.project_id, n.type, n.title, n.description, n.status, n.notes,
	n.document_id, n.source_text, n.source_location, n.is_checked, n.confidence, n.tags,
	n.deadline, n.created_at, n.updated_at, d.filename`

const edgeColumns = `id, project_id, source_node_id, target_node_id, type, description, confidence`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryListNodes returns a project's nodes with their joined source
// filenames, plus the total count matching the filter before limit/offset.
func queryListNodes(ctx context.Context, db executor, projectID string, filter model.NodeFilter) ([]*model.Node, int, error) {
	whereClauses := []string{"n.project_id = $1"}
	args := []any{projectID}
	argIdx := 1

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "n.status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "n.type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.DocumentID != "" {
		whereClauses = append(whereClauses, "n.document_id = "+nextArg())
		args = append(args, filter.DocumentID)
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(n.title ILIKE '%%' || %s || '%%' OR n.description ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	// created_at ASC keeps the element builder's first-encounter group
	// ordering stable across fetches.
	query := "SELECT COUNT(*) OVER() AS total_count, " + joinedNodeColumns +
		" FROM nodes n LEFT JOIN documents d ON n.document_id = d.id" +
		" WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY n.created_at ASC, n.id ASC"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	var total int
	for rows.Next() {
		n, t, err := scanNodeWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan nodes: %w", err)
		}
		total = t
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan nodes: %w", err)
	}

	return nodes, total, nil
}

func queryListEdges(ctx context.Context, db executor, projectID string) ([]*model.Edge, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+edgeColumns+`
		FROM edges
		WHERE project_id = $1
		ORDER BY id ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func queryGetGraph(ctx context.Context, db executor, projectID string, filter model.NodeFilter) (*model.GraphResponse, error) {
	nodes, totalNodes, err := queryListNodes(ctx, db, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	allEdges, err := queryListEdges(ctx, db, projectID)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	// Only return edges whose endpoints are both in the node set, so a
	// limited or filtered fetch never references a node it did not ship.
	idSet := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		idSet[n.ID] = struct{}{}
	}
	var edges []*model.Edge
	for _, e := range allEdges {
		_, srcOK := idSet[e.SourceNodeID]
		_, tgtOK := idSet[e.TargetNodeID]
		if srcOK && tgtOK {
			edges = append(edges, e)
		}
	}

	if nodes == nil {
		nodes = []*model.Node{}
	}
	if edges == nil {
		edges = []*model.Edge{}
	}

	return &model.GraphResponse{
		Nodes:      nodes,
		Edges:      edges,
		TotalNodes: totalNodes,
		TotalEdges: len(allEdges),
	}, nil
}

func queryGetStats(ctx context.Context, db executor, projectID string) (*model.GraphStats, error) {
	var notStarted, inProgress, completed, notApplicable, blocked int
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'not_started' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'not_applicable' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'blocked' THEN 1 ELSE 0 END), 0)
		FROM nodes
		WHERE project_id = $1`,
		projectID,
	).Scan(&notStarted, &inProgress, &completed, &notApplicable, &blocked)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	total := notStarted + inProgress + completed + notApplicable + blocked
	applicable := total - notApplicable
	var pct float64
	if applicable > 0 {
		pct = float64(completed) / float64(applicable) * 100
		pct = math.Round(pct*10) / 10
	}

	return &model.GraphStats{
		TotalNodes: total,
		ByStatus: map[model.Status]int{
			model.StatusNotStarted:    notStarted,
			model.StatusInProgress:    inProgress,
			model.StatusCompleted:     completed,
			model.StatusNotApplicable: notApplicable,
			model.StatusBlocked:       blocked,
		},
		CompletionPercentage: pct,
		ApplicableItems:      applicable,
		CompletedItems:       completed,
	}, nil
}

func queryGetNode(ctx context.Context, db executor, projectID, nodeID string) (*model.Node, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+joinedNodeColumns+`
		FROM nodes n LEFT JOIN documents d ON n.document_id = d.id
		WHERE n.project_id = $1 AND n.id = $2`,
		projectID, nodeID,
	)
	n, err := scanJoinedNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func queryUpdateNode(ctx context.Context, db executor, projectID, nodeID string, upd store.NodeUpdate) (*model.Node, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{projectID, nodeID}
	argIdx := 2

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if upd.Status != nil {
		sets = append(sets, "status = "+nextArg())
		args = append(args, string(*upd.Status))
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = "+nextArg())
		args = append(args, nullString(*upd.Notes))
	}
	if upd.IsChecked != nil {
		sets = append(sets, "is_checked = "+nextArg())
		args = append(args, *upd.IsChecked)
	}

	row := db.QueryRowContext(ctx, `
		UPDATE nodes SET `+strings.Join(sets, ", ")+`
		WHERE project_id = $1 AND id = $2
		RETURNING `+nodeColumns,
		args...,
	)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// RETURNING cannot join; fetch the source filename separately.
	if n.DocumentID != "" {
		var filename sql.NullString
		err := db.QueryRowContext(ctx,
			`SELECT filename FROM documents WHERE id = $1`, n.DocumentID,
		).Scan(&filename)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update node: fetch document: %w", err)
		}
		if filename.Valid && filename.String != "" {
			n.Document = &model.DocumentRef{Filename: filename.String}
		}
	}

	return n, nil
}

func queryImportGraph(ctx context.Context, db executor, projectID string, nodes []*model.Node, edges []*model.Edge, replace bool) (int, int, error) {
	if replace {
		for _, stmt := range []string{
			`DELETE FROM edges WHERE project_id = $1`,
			`DELETE FROM nodes WHERE project_id = $1`,
			`DELETE FROM documents WHERE project_id = $1`,
		} {
			if _, err := db.ExecContext(ctx, stmt, projectID); err != nil {
				return 0, 0, fmt.Errorf("import: clear project: %w", err)
			}
		}
	}

	// Upsert the source documents referenced by the payload, one row per
	// distinct document id.
	seen := make(map[string]struct{})
	for _, n := range nodes {
		if n.DocumentID == "" || n.DocumentName() == "" {
			continue
		}
		if _, ok := seen[n.DocumentID]; ok {
			continue
		}
		seen[n.DocumentID] = struct{}{}
		_, err := db.ExecContext(ctx, `
			INSERT INTO documents (id, project_id, filename)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET filename = EXCLUDED.filename`,
			n.DocumentID, projectID, n.DocumentName(),
		)
		if err != nil {
			return 0, 0, fmt.Errorf("import: document %s: %w", n.DocumentID, err)
		}
	}

	for _, n := range nodes {
		_, err := db.ExecContext(ctx, `
			INSERT INTO nodes (
				id, project_id, type, title, description, status, notes,
				document_id, source_text, source_location, is_checked,
				confidence, tags, deadline, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7,
				$8, $9, $10, $11,
				$12, $13, $14, $15, $16
			)
			ON CONFLICT (id) DO UPDATE SET
				type = EXCLUDED.type,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				status = EXCLUDED.status,
				notes = EXCLUDED.notes,
				document_id = EXCLUDED.document_id,
				source_text = EXCLUDED.source_text,
				source_location = EXCLUDED.source_location,
				is_checked = EXCLUDED.is_checked,
				confidence = EXCLUDED.confidence,
				tags = EXCLUDED.tags,
				deadline = EXCLUDED.deadline,
				updated_at = NOW()`,
			n.ID,
			projectID,
			string(n.Type),
			n.Title,
			nullString(n.Description),
			string(n.Status),
			nullString(n.Notes),
			nullString(n.DocumentID),
			nullString(n.SourceText),
			nullString(n.SourceLocation),
			nullBoolPtr(n.IsChecked),
			nullFloat(n.Confidence),
			tagsBytes(n.Tags),
			nullTimePtr(n.Deadline),
			n.CreatedAt,
			n.UpdatedAt,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("import: node %s: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		_, err := db.ExecContext(ctx, `
			INSERT INTO edges (
				id, project_id, source_node_id, target_node_id, type,
				description, confidence
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				source_node_id = EXCLUDED.source_node_id,
				target_node_id = EXCLUDED.target_node_id,
				type = EXCLUDED.type,
				description = EXCLUDED.description,
				confidence = EXCLUDED.confidence`,
			e.ID,
			projectID,
			e.SourceNodeID,
			e.TargetNodeID,
			string(e.Type),
			nullString(e.Description),
			nullFloat(e.Confidence),
		)
		if err != nil {
			return 0, 0, fmt.Errorf("import: edge %s: %w", e.ID, err)
		}
	}

	return len(nodes), len(edges), nil
}

func queryExportGraph(ctx context.Context, db executor, projectID string) ([]*model.Node, []*model.Edge, error) {
	nodes, _, err := queryListNodes(ctx, db, projectID, model.NodeFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}
	edges, err := queryListEdges(ctx, db, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}
	return nodes, edges, nil
}

func queryListProjects(ctx context.Context, db executor) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT project_id FROM nodes ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
