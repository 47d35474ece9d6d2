package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600,"user":{"id":"u1","email":"a@example.com","role":"customer"}}`))
		case r.URL.Path == "/products/p1":
			_, _ = w.Write([]byte(`{"product":{"id":"p1","name":"Mug","price":"12.5","currency":"INR","in_stock":true}}`))
		case r.URL.Path == "/products/p2":
			_, _ = w.Write([]byte(`{"product":{"id":"p2","name":"Lamp","price":"40","currency":"INR","in_stock":false}}`))
		case r.URL.Path == "/orders" && r.Method == http.MethodPost:
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"order":{"id":"o1","status":"pending","total":"25","currency":"INR"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"route not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_AddLoginCheckout(t *testing.T) {
	srv := fakeAPI(t)
	dir := t.TempDir()
	var out bytes.Buffer
	logger := log.New(io.Discard, "", 0)
	ctx := context.Background()

	a, err := newApp(srv.URL, dir, &out, logger)
	require.NoError(t, err)

	require.NoError(t, a.run(ctx, "add", []string{"-qty", "2", "-color", "red", "p1"}))
	assert.Contains(t, out.String(), "Mug x2")

	err = a.run(ctx, "add", []string{"p2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of stock")

	err = a.run(ctx, "checkout", []string{"-first-name", "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log in first")

	require.NoError(t, a.run(ctx, "login", []string{"a@example.com", "secret1"}))

	// a fresh process sees the persisted cart and session
	out.Reset()
	b, err := newApp(srv.URL, dir, &out, logger)
	require.NoError(t, err)
	require.NoError(t, b.run(ctx, "checkout", []string{"-first-name", "Ada", "-last-name", "L", "-address", "x", "-city", "y", "-state", "z", "-zip", "1"}))
	assert.True(t, strings.Contains(out.String(), "order o1 placed"), out.String())

	out.Reset()
	require.NoError(t, b.run(ctx, "cart", nil))
	assert.Contains(t, out.String(), "cart is empty")
}

func TestApp_UnknownCommand(t *testing.T) {
	a, err := newApp("http://localhost:1", t.TempDir(), io.Discard, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	assert.ErrorIs(t, a.run(context.Background(), "nope", nil), errUsage)
}
