// Package apiclient is the wizard's HTTP client for the gateway: record
// creation, assistant turns, the availability probe, and credential
// refresh. Every call returns either a decoded response or an error
// classified for the wizard's recovery paths.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"casewizard/internal/types"
)

// ErrUnauthorized marks 401/403 responses so callers can route them to
// session-expiry handling instead of the generic error notice.
var ErrUnauthorized = errors.New("unauthorized")

// DomainError carries the server-provided detail verbatim; the wizard
// surfaces it to the user without rewording.
type DomainError struct {
	StatusCode int
	Detail     string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Detail)
}

type Client struct {
	http    *http.Client
	baseURL string
	token   func() string
}

// New creates a client. token supplies the current bearer token per call
// so a refreshed credential takes effect without rebuilding the client;
// nil means unauthenticated requests.
func New(baseURL string, token func() string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
	}
}

func (c *Client) CreateProject(ctx context.Context, body types.ProjectCreate) (types.RecordRef, error) {
	var ref types.RecordRef
	err := c.postJSON(ctx, "/api/projects", body, &ref)
	return ref, err
}

func (c *Client) CreateCase(ctx context.Context, body types.CaseCreate) (types.RecordRef, error) {
	var ref types.RecordRef
	err := c.postJSON(ctx, "/api/cases", body, &ref)
	return ref, err
}

func (c *Client) ConfigTurn(ctx context.Context, req types.ConfigRequest) (types.ConfigResponse, error) {
	var resp types.ConfigResponse
	err := c.postJSON(ctx, "/api/ai/intelligent-config", req, &resp)
	return resp, err
}

func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var resp types.StatusResponse
	err := c.getJSON(ctx, "/api/ai/status", &resp)
	return resp, err
}

// Login exchanges a username for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, username string) (access, refresh string, err error) {
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.postJSON(ctx, "/api/auth/login", map[string]string{"username": username}, &resp); err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (string, error) {
	var resp types.RefreshResponse
	err := c.postJSON(ctx, "/api/auth/refresh", types.RefreshRequest{Token: token}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return "", fmt.Errorf("refresh: empty access_token in response")
	}
	return resp.AccessToken, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DomainError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// readDetail extracts the gateway's {"detail": ...} body, falling back to
// the raw text when the body is not the expected shape.
func readDetail(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 4096))
	var eb types.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Detail) != "" {
		return eb.Detail
	}
	return strings.TrimSpace(string(body))
}
