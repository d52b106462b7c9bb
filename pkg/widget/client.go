package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Header and cookie names used by the creation request.
const (
	DefaultCSRFCookie    = "csrftoken"
	DefaultCSRFHeader    = "X-CSRFToken"
	HeaderRequestedWith  = "X-Requested-With"
	RequestedWithAjax    = "XMLHttpRequest"
	maxResponseBodyBytes = 1 << 20
)

// CreationRequest is the payload posted to the creation endpoint.
type CreationRequest struct {
	Model    string `json:"model"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// CreationResult is the decoded creation response.
type CreationResult struct {
	Success bool
	ID      string
	Label   string
	Name    string
	Error   string
	Status  int
}

// DisplayLabel picks the visible text for the created option: the server
// label, then the server name, then fallback.
func (r CreationResult) DisplayLabel(fallback string) string {
	if label := strings.TrimSpace(r.Label); label != "" {
		return label
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fallback
}

// Creator issues creation requests. Client is the HTTP implementation.
type Creator interface {
	Create(ctx context.Context, endpoint string, req CreationRequest) (CreationResult, error)
}

// TokenSource returns the anti-forgery token for a request target. An empty
// token omits the header.
type TokenSource func(ctx context.Context, target *url.URL) string

// Client posts creation requests over HTTP.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	csrfCookie  string
	csrfHeader  string
	tokenSource TokenSource
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient constructs a client using http.DefaultClient unless overridden.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		csrfCookie: DefaultCSRFCookie,
		csrfHeader: DefaultCSRFHeader,
		logger:     discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// WithHTTPClient sets the HTTP client. Its cookie jar is the default token
// source.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL resolves relative endpoints against base.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(base)
	}
}

// WithCSRFCookie overrides the session cookie holding the anti-forgery token.
func WithCSRFCookie(name string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.csrfCookie = trimmed
		}
	}
}

// WithCSRFHeader overrides the header carrying the anti-forgery token.
func WithCSRFHeader(name string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.csrfHeader = trimmed
		}
	}
}

// WithTokenSource replaces the cookie jar lookup.
func WithTokenSource(source TokenSource) ClientOption {
	return func(c *Client) {
		c.tokenSource = source
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type creationResponse struct {
	Success bool            `json:"success"`
	ID      json.RawMessage `json:"id"`
	Label   string          `json:"label"`
	Name    string          `json:"name"`
	Error   string          `json:"error"`
}

// Create posts req to endpoint. A result is successful only when the
// endpoint answered 2xx with success:true and an id.
func (c *Client) Create(ctx context.Context, endpoint string, req CreationRequest) (CreationResult, error) {
	target, err := c.resolve(endpoint)
	if err != nil {
		return CreationResult{}, &TransportError{Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return CreationResult{}, &TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return CreationResult{}, &TransportError{Err: fmt.Errorf("request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestedWith, RequestedWithAjax)
	if token := c.token(ctx, target); token != "" {
		httpReq.Header.Set(c.csrfHeader, token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CreationResult{}, &TransportError{Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return CreationResult{Status: resp.StatusCode}, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return CreationResult{Status: resp.StatusCode}, &TransportError{Err: fmt.Errorf("decode response (status %d): expected a JSON object", resp.StatusCode)}
	}
	var payload creationResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CreationResult{Status: resp.StatusCode}, &TransportError{Err: fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)}
	}

	result := CreationResult{
		Success: payload.Success,
		ID:      rawID(payload.ID),
		Label:   payload.Label,
		Name:    payload.Name,
		Error:   strings.TrimSpace(payload.Error),
		Status:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Success {
		result.Success = false
		c.logger.DebugContext(ctx, "creation rejected",
			slog.String("endpoint", target.String()),
			slog.Int("status", resp.StatusCode),
			slog.String("error", result.Error),
		)
		return result, &ApplicationError{Status: resp.StatusCode, Message: result.Error}
	}
	if result.ID == "" {
		result.Success = false
		return result, &ApplicationError{Status: resp.StatusCode}
	}
	return result, nil
}

func (c *Client) resolve(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	if c.baseURL == "" {
		return nil, errors.New("relative endpoint " + endpoint + " requires a base url")
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(ref), nil
}

func (c *Client) token(ctx context.Context, target *url.URL) string {
	if c.tokenSource != nil {
		return strings.TrimSpace(c.tokenSource(ctx, target))
	}
	if c.httpClient == nil || c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(target) {
		if cookie.Name == c.csrfCookie {
			return cookie.Value
		}
	}
	return ""
}

func rawID(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return trimmed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
