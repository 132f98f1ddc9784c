package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/discountsync/pkg/config"
	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	defaultBodyReadLimit int64 = 4096
)

var errBaseURLRequired = errors.New("remote base url is required")

// Client talks JSON to the authoritative discounts backend.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	authToken     string
	bodyReadLimit int64
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAuthToken sends the token as a bearer credential on every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = strings.TrimSpace(token)
	}
}

// WithBodyReadLimit caps how much of an error body is kept for diagnostics.
func WithBodyReadLimit(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.bodyReadLimit = limit
		}
	}
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:       trimmed,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		bodyReadLimit: defaultBodyReadLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewFromConfig builds a client from the remote section of the config.
func NewFromConfig(cfg config.RemoteConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithAuthToken(cfg.AuthToken),
		WithBodyReadLimit(cfg.BodyReadLimit),
	)
}

// Items returns the Items API bound to this client.
func (c *Client) Items() *ItemsAPI { return &ItemsAPI{c: c} }

// Discounts returns the Discounts API bound to this client.
func (c *Client) Discounts() *DiscountsAPI { return &DiscountsAPI{c: c} }

// Assignments returns the Assignments API bound to this client.
func (c *Client) Assignments() *AssignmentsAPI { return &AssignmentsAPI{c: c} }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "").WithDetails(map[string]any{"reason": "remote client not configured"})
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "").WithDetails(map[string]any{"path": path})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("build %s %s: %w", method, path, err), "")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%s %s: %w", method, path, err), "")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, c.bodyReadLimit))
		cause := &pkgerrors.RemoteStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, extractMessage(raw)).
			WithDetails(map[string]any{"method": method, "path": path, "status": resp.StatusCode})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("read %s %s: %w", method, path, err), "")
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(unwrapData(raw)))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("decode %s %s: %w", method, path, err), "")
	}
	return nil
}

// unwrapData returns the contents of a {"data": ...} envelope, or raw as is.
func unwrapData(raw []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok && len(data) > 0 {
		return data
	}
	return raw
}
