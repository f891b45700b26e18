package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/gomarket-storefront/internal/domain/models"
	"github.com/athebyme/gomarket-storefront/pkg/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListMergesQueryAndFlags(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"items":[{"slug":"lamp"}],"total":1,"page":2,"pageSize":10,"totalPages":1}}`))
	}))
	defer srv.Close()

	out, err := run(t, "list", "--base-url", srv.URL, "--query", "search=lamp&page=2", "--category", "Books", "--sort", "newest")
	require.NoError(t, err)

	assert.Equal(t, "lamp", got.Get("search"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, []string{"Books"}, got["category"])
	assert.Equal(t, "newest", got.Get("sortBy"))

	var page models.ProductPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "lamp", page.Items[0].Slug)
}

func TestGetRelated(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"success":true,"data":{"slug":"desk","relatedProducts":[{"slug":"chair"}]}}`))
	}))
	defer srv.Close()

	out, err := run(t, "get", "desk", "--related", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "/products/desk/related", path)
	assert.Contains(t, out, `"chair"`)
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Product not found"}`))
	}))
	defer srv.Close()

	_, err := run(t, "get", "missing", "--base-url", srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.Write([]byte(`{"success":true,"message":"gone"}`))
	}))
	defer srv.Close()

	out, err := run(t, "delete", "lamp", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Contains(t, out, `"gone"`)
}

func TestArgsValidation(t *testing.T) {
	_, err := run(t, "get", "--base-url", "http://localhost")
	assert.Error(t, err)

	_, err = run(t, "list", "--base-url", "not a url")
	assert.Error(t, err)
}
