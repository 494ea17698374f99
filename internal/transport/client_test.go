package transport

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citemap/citemap/pkg/errors"
)

func TestClientAppliesHeaders(t *testing.T) {
	var gotAccept, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Custom")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(WithHeader("X-Custom", "yes"))
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "yes", gotCustom)
}

func TestClientRateLimitWaits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(WithRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// Two waits at 20 req/s is at least ~100ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestDecodeJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 3}`))
	}))
	defer server.Close()

	resp, err := New().Get(context.Background(), server.URL)
	require.NoError(t, err)

	var target struct {
		Count int `json:"count"`
	}
	require.NoError(t, DecodeJSON(resp, "pubmed", &target))
	assert.Equal(t, 3, target.Count)
}

func TestDecodeJSONMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	resp, err := New().Get(context.Background(), server.URL)
	require.NoError(t, err)

	var target map[string]any
	err = DecodeJSON(resp, "pubmed", &target)

	var fmtErr *errors.FormatError
	require.True(t, stderrors.As(err, &fmtErr))
	assert.Equal(t, "pubmed", fmtErr.Source)
}

func TestReadBodyNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer server.Close()

	resp, err := New().Get(context.Background(), server.URL)
	require.NoError(t, err)

	_, err = ReadBody(resp, "semantic_scholar")

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, errors.IsRateLimited(err))
}

func TestDecodeXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<doc><title>Hello</title></doc>`))
	}))
	defer server.Close()

	resp, err := New().Get(context.Background(), server.URL)
	require.NoError(t, err)

	var target struct {
		Title string `xml:"title"`
	}
	require.NoError(t, DecodeXML(resp, "pubmed", &target))
	assert.Equal(t, "Hello", target.Title)
}
