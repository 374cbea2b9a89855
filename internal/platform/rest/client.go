// Package rest is the authenticated HTTP request layer shared by every
// control-plane client.
//
// One call to [Client.Do] is one HTTP request: there is no retry here, since
// only the caller knows whether an operation is safe to repeat. Every request
// must name an explicit API version. Failures are reported as *TransportError
// (the request never produced a response) or *APIError (non-2xx status).
package rest

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

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"
)

const defaultTimeout = 60 * time.Second

// Request describes one control-plane call.
type Request struct {
	// Operation names the call for metrics and logs, e.g. "create_project".
	Operation string
	Method    string
	URL       string
	Query     url.Values
	// APIVersion is mandatory. It is sent as the api-version query parameter
	// unless VersionInAccept is set, in which case it goes into the Accept
	// header together with AcceptOptions.
	APIVersion      string
	VersionInAccept bool
	AcceptOptions   []string
	Body            any
}

// Client issues authenticated JSON requests.
type Client struct {
	tokens     oauth2.TokenSource
	httpClient *http.Client
	metrics    *Metrics
	log        logr.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. with an httptest server client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records every call into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client authenticating with tokens. A nil token source
// sends unauthenticated requests.
func NewClient(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logr.Discard(),
		userAgent:  "pipelinekit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes a JSON response body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if req.APIVersion == "" {
		return fmt.Errorf("%s: request to %s has no api-version", req.Operation, req.URL)
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	log, lerr := logr.FromContext(ctx)
	if lerr != nil {
		log = c.log
	}
	log = log.WithValues("operation", req.Operation, "method", req.Method)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.Operation, resultTransportError, time.Since(start))
		log.V(1).Info("control plane request failed", "error", err.Error())
		return &TransportError{Operation: req.Operation, Method: req.Method, URL: redact(httpReq.URL), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(req.Operation, resultTransportError, time.Since(start))
		return &TransportError{Operation: req.Operation, Method: req.Method, URL: redact(httpReq.URL), Err: fmt.Errorf("read response: %w", err)}
	}

	log.V(1).Info("control plane request", "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observe(req.Operation, resultAPIError, time.Since(start))
		return &APIError{Operation: req.Operation, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	c.metrics.observe(req.Operation, resultSuccess, time.Since(start))

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parse response: %w (status %d)", req.Operation, err, resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid url %q: %w", req.Operation, req.URL, err)
	}

	q := u.Query()
	for k, vs := range req.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	accept := "application/json"
	if req.VersionInAccept {
		accept = strings.Join(append([]string{"application/json", "api-version=" + req.APIVersion}, req.AcceptOptions...), ";")
	} else {
		q.Set("api-version", req.APIVersion)
	}
	u.RawQuery = q.Encode()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", req.Operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: acquire token: %w", req.Operation, err)
		}
		tok.SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

// errorMessage pulls a human-readable message out of the common error body
// shapes and falls back to the raw body.
func errorMessage(body []byte) string {
	var shaped struct {
		Message string `json:"message"`
		Error   *struct {
			Message any `json:"message"`
		} `json:"error"`
		ODataError *struct {
			Message struct {
				Value string `json:"value"`
			} `json:"message"`
		} `json:"odata.error"`
	}
	if err := json.Unmarshal(body, &shaped); err == nil {
		switch {
		case shaped.Message != "":
			return shaped.Message
		case shaped.ODataError != nil && shaped.ODataError.Message.Value != "":
			return shaped.ODataError.Message.Value
		case shaped.Error != nil:
			if s, ok := shaped.Error.Message.(string); ok && s != "" {
				return s
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return msg
}

func redact(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	return c.String()
}

// TransportError reports a request that produced no usable response.
type TransportError struct {
	Operation string
	Method    string
	URL       string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Operation, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API error (status %d)", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Operation, e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsTransient reports errors worth retrying for operations that are safe to
// repeat: transport failures, throttling and server-side errors.
func IsTransient(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return !errors.Is(err, context.Canceled)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
