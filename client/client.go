// Package client implements the HTTP request layer for the payment
// receiving backend: token-authenticated requests, transparent pagination,
// bounded manual retry, and per-resource stores that survive failures with
// their last good data intact.
package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBackoffBase = time.Second
	defaultTimeout     = 30 * time.Second

	// maxRetries bounds Retry replays per failed request.
	maxRetries = 3
)

// Client issues authenticated requests against a single API base URL.
// It is safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	tokens      TokenProvider
	logger      *slog.Logger
	backoffBase time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenProvider sets the credential source for outgoing requests.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBackoffBase sets the base retry delay. The n-th replay waits
// base << n, so the default base of one second yields 1s, 2s, 4s.
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) { c.backoffBase = d }
}

// New creates a client for the given base URL. An empty or unparseable
// base URL is rejected here, before any request is attempted.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrNoBaseURL
	}

	c := &Client{
		baseURL:     parsed,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		tokens:      StaticToken(""),
		logger:      slog.Default(),
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Do issues a single request described by d and returns the raw response
// body. Non-2xx responses and transport failures come back as *Error.
func (c *Client) Do(ctx context.Context, d RequestDescriptor) ([]byte, error) {
	target := c.baseURL.JoinPath(d.Path)
	if len(d.Query) > 0 {
		target.RawQuery = d.Query.Encode()
	}
	return c.do(ctx, d, target.String())
}

func (c *Client) do(ctx context.Context, d RequestDescriptor, rawURL string) ([]byte, error) {
	body, contentType, err := d.body()
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	method := d.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	for k, vs := range d.Header {
		req.Header[k] = vs
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &Error{Message: "resolve auth token: " + err.Error()}
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		return nil, errorFromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		return nil, errorFromTransport(err)
	}

	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("url", rawURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, raw)
	}
	return raw, nil
}

// ──────────────────────────────────────────────────
// Pagination
// ──────────────────────────────────────────────────

// pageEnvelope is the server's paginated list shape.
type pageEnvelope struct {
	Results  []json.RawMessage `json:"results"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Count    int               `json:"count"`
}

// detectPage reports whether the body is a pagination envelope: a JSON
// object carrying a "results" array alongside the cursor keys. Plain
// arrays and non-envelope objects pass through untouched.
func detectPage(body []byte) (*pageEnvelope, bool) {
	trimmed := strings.TrimLeftFunc(string(body), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, false
	}
	results, ok := keys["results"]
	if !ok || !strings.HasPrefix(strings.TrimSpace(string(results)), "[") {
		return nil, false
	}
	if _, ok := keys["count"]; !ok {
		if _, ok := keys["next"]; !ok {
			return nil, false
		}
	}
	var page pageEnvelope
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, false
	}
	return &page, true
}

// FetchAll issues the request and, when the response is paginated,
// follows every next link sequentially and returns the concatenated
// results as a single JSON array. Element order and duplicates are
// preserved exactly as the server returned them. Non-paginated bodies
// are returned as-is.
func (c *Client) FetchAll(ctx context.Context, d RequestDescriptor) ([]byte, error) {
	body, err := c.Do(ctx, d)
	if err != nil {
		return nil, err
	}
	page, ok := detectPage(body)
	if !ok {
		return body, nil
	}

	items := append([]json.RawMessage(nil), page.Results...)
	next := page.Next
	for next != nil && *next != "" {
		nextURL, err := c.resolveNext(*next)
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}
		body, err := c.do(ctx, RequestDescriptor{Method: http.MethodGet, Header: d.Header}, nextURL)
		if err != nil {
			return nil, err
		}
		page, ok := detectPage(body)
		if !ok {
			return nil, &Error{Message: "paginated response lost its envelope mid-walk"}
		}
		items = append(items, page.Results...)
		next = page.Next
	}

	return json.Marshal(items)
}

// resolveNext turns a next link, absolute or relative, into a full URL.
func (c *Client) resolveNext(next string) (string, error) {
	u, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(u).String(), nil
}
