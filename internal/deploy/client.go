// Package deploy publishes a project's files to the static hosting
// provider over its HTTP API.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Deployment describes a published site.
type Deployment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client talks to the hosting provider.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a deploy client. token may be empty for providers
// that accept anonymous uploads.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type deployRequest struct {
	Project string            `json:"project"`
	Files   map[string]string `json:"files"`
}

// Deploy uploads the project files and returns the live deployment.
// When the provider omits an id, one is generated locally so callers
// always get a stable reference.
func (c *Client) Deploy(ctx context.Context, project string, files map[string]string) (*Deployment, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("project %s has no files to deploy", project)
	}

	body, err := json.Marshal(deployRequest{Project: project, Files: files})
	if err != nil {
		return nil, fmt.Errorf("failed to encode deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/deployments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deploy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("deploy failed with status %d: %s", resp.StatusCode, string(msg))
	}

	var dep Deployment
	if err := json.NewDecoder(resp.Body).Decode(&dep); err != nil {
		return nil, fmt.Errorf("failed to decode deploy response: %w", err)
	}
	if dep.ID == "" {
		dep.ID = uuid.NewString()
	}
	if dep.URL == "" {
		return nil, fmt.Errorf("provider returned no deployment URL for %s", project)
	}
	return &dep, nil
}
