package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{BaseURL: srv.URL + "/", ManagementToken: "mgmt-token", APIKey: "stack-key"})
}

func TestListTaxonomies(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"taxonomies":[{"uid":"colors","name":"Colors"},{"uid":"sizes","name":"Sizes","description":"T-shirt sizes"}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).ListTaxonomies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/v3/taxonomies", gotPath)
	require.Len(t, got, 2)
	assert.Equal(t, "colors", got[0].UID)
	assert.Equal(t, "T-shirt sizes", got[1].Description)
}

func TestListTerms(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"terms":[{"uid":"red","name":"Red","taxonomy_uid":"colors"},{"uid":"crimson","name":"Crimson","parent_uid":"red","taxonomy_uid":"colors","depth":2}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).ListTerms(context.Background(), "colors")

	require.NoError(t, err)
	assert.Equal(t, "/v3/taxonomies/colors/terms", gotPath)
	assert.Equal(t, "depth=5", gotQuery)
	require.Len(t, got, 2)
	assert.Equal(t, "red", got[1].ParentUID)
	assert.Equal(t, "colors", got[1].TaxonomyUID)
}

func TestAuthHeaders(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("authorization")
		gotKey = r.Header.Get("api_key")
		w.Write([]byte(`{"taxonomies":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListTaxonomies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "mgmt-token", gotAuth)
	assert.Equal(t, "stack-key", gotKey)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_message":"invalid token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListTaxonomies(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid token")
}

func TestAPIErrorBodyTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListTerms(context.Background(), "colors")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Body, 512)
}

func TestNoRetryOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListTaxonomies(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"taxonomies": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ListTaxonomies(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv).ListTaxonomies(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDefaultBaseURL(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Zero(t, c.httpClient.Timeout)
}
