package api

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://s6-1cep.onrender.com"
	DefaultTimeout = 15 * time.Second

	// DefaultMaxDownload bounds a CV download held in memory.
	DefaultMaxDownload = 32 << 20

	RequestIDHeader = "X-Request-ID"
)

// ErrNoToken is returned by a token source that currently holds no credential.
// Requests made through such a source go out unauthenticated.
var ErrNoToken = errors.New("api: no bearer token")

// ErrDownloadTooLarge is returned instead of a truncated file.
var ErrDownloadTooLarge = errors.New("api: download exceeds size limit")

// Client is a thin REST wrapper around the job-matching backend.
// It performs no caching, retries or payload transformation.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	timeout     time.Duration
	userAgent   string
	maxDownload int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// still wrapped for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxDownload sets the largest file DownloadCV accepts.
func WithMaxDownload(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxDownload = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		timeout:     DefaultTimeout,
		userAgent:   "jobportal",
		maxDownload: DefaultMaxDownload,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = otelhttp.NewTransport(base)
	c.http = &hc

	return c, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// WithTokenSource returns a copy of c whose requests carry the bearer token
// yielded by src. The copy shares nothing mutable with c.
func (c *Client) WithTokenSource(src oauth2.TokenSource) *Client {
	cp := *c
	hc := *c.http
	hc.Transport = &bearerTransport{source: src, base: c.http.Transport}
	cp.http = &hc
	return &cp
}

type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	switch {
	case errors.Is(err, ErrNoToken):
		return t.base.RoundTrip(req)
	case err != nil:
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("api: token source: %w", err)
	}

	r := req.Clone(req.Context())
	tok.SetAuthHeader(r)
	return t.base.RoundTrip(r)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

// do sends a request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	resp, cancel, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// send performs the round trip and converts non-2xx answers into *APIError.
// On success the caller owns resp.Body and must call cancel once done with it.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
	contentType string,
) (*http.Response, context.CancelFunc, error) {

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, nil, newAPIError(method, path, resp)
	}

	return resp, cancel, nil
}

type requestIDKey struct{}

// ContextWithRequestID makes outgoing calls reuse an inbound request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
