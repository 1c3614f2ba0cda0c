package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// HTTPClient implements GraphClient using the tendergraph HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Graph reads ---

func (c *HTTPClient) FetchGraph(ctx context.Context, projectID string) (*model.GraphResponse, error) {
	var graph model.GraphResponse
	if err := c.doJSON(ctx, http.MethodGet, c.projectPath(projectID, "/graph"), nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

func (c *HTTPClient) Stats(ctx context.Context, projectID string) (*model.GraphStats, error) {
	var stats model.GraphStats
	if err := c.doJSON(ctx, http.MethodGet, c.projectPath(projectID, "/graph/stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]string, error) {
	var resp struct {
		Projects []string `json:"projects"`
		Total    int      `json:"total"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// --- Node reads and updates ---

func (c *HTTPClient) GetNode(ctx context.Context, projectID, nodeID string) (*model.Node, error) {
	var node model.Node
	path := c.projectPath(projectID, "/nodes/"+url.PathEscape(nodeID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func (c *HTTPClient) UpdateNode(ctx context.Context, projectID, nodeID string, req *UpdateNodeRequest) (*model.Node, error) {
	var node model.Node
	path := c.projectPath(projectID, "/nodes/"+url.PathEscape(nodeID))
	if err := c.doJSON(ctx, http.MethodPut, path, req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// --- Bulk transfer ---

func (c *HTTPClient) ImportGraph(ctx context.Context, projectID string, req *ImportRequest) (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.doJSON(ctx, http.MethodPost, c.projectPath(projectID, "/import"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ExportGraph(ctx context.Context, projectID string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.doJSON(ctx, http.MethodGet, c.projectPath(projectID, "/export"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

func (c *HTTPClient) projectPath(projectID, suffix string) string {
	return "/v1/projects/" + url.PathEscape(projectID) + suffix
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content is success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
