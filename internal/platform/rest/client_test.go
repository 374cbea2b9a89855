package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// rewriteTransport sends every request to the test server regardless of the
// host in the request URL.
type rewriteTransport struct {
	base    string
	wrapped http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(rt.base)
	if err != nil {
		return nil, err
	}
	req = req.Clone(req.Context())
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	return rt.wrapped.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewMetrics(prometheus.NewRegistry())
	hc := &http.Client{Transport: &rewriteTransport{base: srv.URL, wrapped: http.DefaultTransport}}
	opts = append([]Option{WithHTTPClient(hc), WithMetrics(m)}, opts...)
	c := NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), opts...)
	return c, m
}

func TestDo_QueryVersionAndAuth(t *testing.T) {
	t.Parallel()
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "5.0", r.URL.Query().Get("api-version"))
		assert.Equal(t, "CUS", r.URL.Query().Get("preferredRegion"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"id":"p1","name":"proj"}`))
	}))
	defer srv.Close()
	base = srv.URL

	c := NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), WithHTTPClient(srv.Client()))

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := c.Do(context.Background(), Request{
		Operation:  "get_project",
		URL:        base + "/org/_apis/projects/proj",
		Query:      map[string][]string{"preferredRegion": {"CUS"}},
		APIVersion: "5.0",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "p1", out.ID)
}

func TestDo_VersionInAccept(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("api-version"))
		assert.Equal(t, "application/json;api-version=5.1-preview.2;excludeUrls=true", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	err := c.Do(context.Background(), Request{
		Operation:       "create_service_endpoint",
		Method:          http.MethodPost,
		URL:             "https://dev.azure.com/org/proj/_apis/serviceendpoint/endpoints",
		APIVersion:      "5.1-preview.2",
		VersionInAccept: true,
		AcceptOptions:   []string{"excludeUrls=true"},
		Body:            map[string]string{"name": "x"},
	}, nil)
	require.NoError(t, err)
}

func TestDo_MissingAPIVersion(t *testing.T) {
	t.Parallel()
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
	})

	err := c.Do(context.Background(), Request{Operation: "list", URL: "http://localhost/x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no api-version")
	assert.Equal(t, 0, calls)
}

func TestDo_APIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"TF200019: project exists","typeKey":"ProjectAlreadyExistsException"}`, "TF200019: project exists"},
		{"nested error", http.StatusConflict, `{"error":{"code":"RoleAssignmentExists","message":"already assigned"}}`, "already assigned"},
		{"odata error", http.StatusBadRequest, `{"odata.error":{"code":"Request_BadRequest","message":{"lang":"en","value":"bad app"}}}`, "bad app"},
		{"plain body", http.StatusInternalServerError, "boom", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var target string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			target = srv.URL

			m := NewMetrics(prometheus.NewRegistry())
			c := NewClient(nil, WithHTTPClient(srv.Client()), WithMetrics(m))
			err := c.Do(context.Background(), Request{Operation: "op", URL: target, APIVersion: "5.0"}, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.InDelta(t, 1, testutil.ToFloat64(m.Calls().WithLabelValues("op", "api_error")), 0)
		})
	}
}

func TestDo_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	m := NewMetrics(prometheus.NewRegistry())
	c := NewClient(nil, WithMetrics(m))
	err := c.Do(context.Background(), Request{Operation: "op", URL: target + "/x?secret=1", APIVersion: "5.0"}, nil)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.NotContains(t, transportErr.URL, "secret")
	assert.True(t, IsTransient(err))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Calls().WithLabelValues("op", "transport_error")), 0)
}

func TestDo_TokenError(t *testing.T) {
	t.Parallel()
	c := NewClient(failingTokenSource{})
	err := c.Do(context.Background(), Request{Operation: "op", URL: "http://localhost/", APIVersion: "1.0"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire token")
}

func TestDo_SuccessMetrics(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewMetrics(prometheus.NewRegistry())
	c := NewClient(nil, WithHTTPClient(srv.Client()), WithMetrics(m))

	var out map[string]any
	require.NoError(t, c.Do(context.Background(), Request{Operation: "patch", Method: http.MethodPatch, URL: srv.URL, APIVersion: "5.1-preview.1"}, &out))
	assert.Nil(t, out)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Calls().WithLabelValues("patch", "success")), 0)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()
	notFound := &APIError{Operation: "get", StatusCode: 404}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsTransient(notFound))
	assert.True(t, IsTransient(&APIError{StatusCode: 503}))
	assert.True(t, IsTransient(&APIError{StatusCode: 429}))
	assert.False(t, IsTransient(errors.New("other")))
	assert.False(t, IsTransient(&TransportError{Err: context.Canceled}))
	assert.Equal(t, "get: API error (status 404)", notFound.Error())
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("no credentials")
}
