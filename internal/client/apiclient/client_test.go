package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c, srv
}

func TestRequest_JSONBodyAndDefaultHeaders(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"access_token":"abc"}`))
	})

	got, err := c.Request(context.Background(), "/auth/login", Request{
		Method:  http.MethodPost,
		Body:    map[string]string{"email": "a@example.com"},
		Headers: map[string]string{"Authorization": "Bearer tok"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"access_token": "abc"}, got)
}

func TestRequest_ContentTypeOverride(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
	})
	_, err := c.Request(context.Background(), "/x", Request{
		Method:  http.MethodPost,
		Body:    "raw",
		Headers: map[string]string{"content-type": "text/plain"},
	})
	require.NoError(t, err)
}

func TestRequest_EmptyAndTextBodies(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte("pong"))
	})

	empty, err := c.Request(context.Background(), "/empty", Request{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, empty)

	text, err := c.Request(context.Background(), "/text", Request{})
	require.NoError(t, err)
	assert.Equal(t, "pong", text)
}

func TestRequest_Non2xxIsAPIError(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid quantity"}`))
		case "/message":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"already exists"}`))
		case "/text":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	cases := map[string]struct {
		status  int
		message string
	}{
		"/json":    {http.StatusBadRequest, "invalid quantity"},
		"/message": {http.StatusConflict, "already exists"},
		"/text":    {http.StatusBadGateway, "upstream down"},
		"/empty":   {http.StatusServiceUnavailable, "Service Unavailable"},
	}
	for path, want := range cases {
		_, err := c.Request(context.Background(), path, Request{})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr), "path %s: %v", path, err)
		assert.Equal(t, want.status, apiErr.Status, path)
		assert.Equal(t, want.message, apiErr.Message, path)
	}
}

func TestDo_DecodesTypedBody(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "category_id=c1", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"products":[{"id":"p1","price":"12.5"}]}`))
	})
	var out struct {
		Products []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"products"`
	}
	require.NoError(t, c.Do(context.Background(), "/products?category_id=c1", Request{}, &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, "p1", out.Products[0].ID)
}

func TestCredentialModes(t *testing.T) {
	var seen []string
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s1", Path: "/"})
			return
		}
		ck, err := r.Cookie("sid")
		if err != nil {
			seen = append(seen, "none")
			return
		}
		seen = append(seen, ck.Value)
	})

	ctx := context.Background()
	_, err := c.Request(ctx, "/login", Request{})
	require.NoError(t, err)
	for _, mode := range []Credentials{"", CredentialsSameOrigin, CredentialsOmit} {
		_, err := c.Request(ctx, "/check", Request{Credentials: mode})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"s1", "s1", "none"}, seen)
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
}
