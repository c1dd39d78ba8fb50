// Package client is the Go SDK for the portfolio service. It keeps the
// issued bearer credential in a session.Manager, attaches it to every
// authenticated request, and clears it whenever the API answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spec-kit/portfolio-service/pkg/session"
)

// Client talks to the portfolio API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Manager
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New builds a client over the given base URL and session manager.
func New(baseURL string, sessions *session.Manager, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sessions:   sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the credential manager, e.g. to register an expiry handler.
func (c *Client) Session() *session.Manager {
	return c.sessions
}

// Login authenticates and stores the issued token in the session manager.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out loginData
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.SetAuthToken(ctx, out.Auth.Token); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout ends the server session and clears the stored credential. The local
// credential is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, http.StatusNoContent)
	if clearErr := c.sessions.RemoveAuthToken(ctx); err == nil {
		err = clearErr
	}
	return err
}

// Me returns the authenticated identity from the API.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a new portfolio project.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject replaces a project's writable fields.
func (c *Client) UpdateProject(ctx context.Context, id string, input ProjectInput) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, input, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil, http.StatusNoContent)
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjects fetches projects matching the query.
func (c *Client) ListProjects(ctx context.Context, query ListQuery) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, "/projects"+query.encode(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// do executes one request against the API. The bearer value from the session
// manager is attached whenever one is active, and a 401 response clears the
// stored credential before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any, expectedStatus int) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessions.AccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.sessions.RemoveAuthToken(ctx)
	}
	if resp.StatusCode != expectedStatus {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}
