package birdcast

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

func testOptions() Options {
	return Options{
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
		Retries:      2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}
}

func TestFetch_ReturnsBodyAndSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>dashboard</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(testOptions(), slog.Default())
	body, err := c.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, body, "dashboard")
	assert.Equal(t, "test-agent", gotUA)
}

func TestFetch_RetriesTransientServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := NewClient(testOptions(), slog.Default())
	body, err := c.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, body, "ok")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_StatusErrorAfterRetryExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testOptions(), slog.Default())
	_, err := c.Fetch(context.Background(), srv.URL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, srv.URL, fetchErr.URL)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.ErrorContains(t, err, "503")
	// initial attempt plus two retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_RejectsNonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "not a page"}`))
	}))
	defer srv.Close()

	c := NewClient(testOptions(), slog.Default())
	_, err := c.Fetch(context.Background(), srv.URL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorContains(t, err, "content type")
}

func TestFetch_RejectsStylesheetBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("@keyframes spin { from { transform: rotate(0deg); } }"))
	}))
	defer srv.Close()

	c := NewClient(testOptions(), slog.Default())
	_, err := c.Fetch(context.Background(), srv.URL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorContains(t, err, "CSS")
}

func TestFetch_NetworkErrorWrapsURL(t *testing.T) {
	opts := testOptions()
	opts.Retries = 0

	c := NewClient(opts, slog.Default())
	_, err := c.Fetch(context.Background(), "http://127.0.0.1:1/region/US-FL-031")

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "http://127.0.0.1:1/region/US-FL-031", fetchErr.URL)
	assert.Equal(t, 1, fetchErr.Attempts)
}

func TestLooksLikeCSS(t *testing.T) {
	assert.True(t, looksLikeCSS("@keyframes fade { }"))
	assert.True(t, looksLikeCSS(".css-1x2y3z { color: red }"))
	assert.False(t, looksLikeCSS("<!DOCTYPE html><html><head><title>Migration Dashboard</title></head></html>"))
}
