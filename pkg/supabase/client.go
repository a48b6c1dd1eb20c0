package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
)

const (
	authAdminUsersPath = "/auth/v1/admin/users"
	restPathPrefix     = "/rest/v1/"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "wms-superadmin"
)

// Client talks to the auth admin API and the record API of one project using the
// service credential. It is safe for sequential use by a single bootstrap run.
type Client struct {
	baseURL    *url.URL
	serviceKey string
	httpClient *http.Client
	userAgent  string
}

// Option is a function that configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a client for the project at baseURL
func NewClient(baseURL, serviceKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q is not absolute", baseURL)
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("service key is required")
	}

	client := &Client{
		baseURL:    u,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// newRequest builds an authenticated request. body is JSON encoded when not nil.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out when out is not nil.
// Non-2xx responses become *errors.Error values carrying status and body.
func (c *Client) do(req *http.Request, operation string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return idmerrors.Wrapf(err, idmerrors.ErrCodeTransport, "%s request failed", operation)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return idmerrors.Wrapf(err, idmerrors.ErrCodeTransport, "failed to read %s response", operation)
	}

	slog.Debug("Backend response", "operation", operation, "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return idmerrors.FromResponse(operation, resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return idmerrors.Wrapf(err, idmerrors.ErrCodeInvalidResponse, "failed to parse %s response", operation).
			WithDetail(idmerrors.DetailStatus, resp.StatusCode).
			WithDetail(idmerrors.DetailBody, string(body))
	}
	return nil
}
