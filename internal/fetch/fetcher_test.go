package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

func TestFetcher_Fetch_Success(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = r.Header.Clone()
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><div class="card">hello</div></body></html>`))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), ingest.FetchRequest{
		URL:     srv.URL,
		Referer: "https://hh.ru",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, resp.Document)
	require.Equal(t, "hello", resp.Document.Find("div.card").Text())
	require.NotEmpty(t, resp.Body)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "https://hh.ru", headers.Get("Referer"))
	require.Contains(t, headers.Get("User-Agent"), "Chrome")
	require.Contains(t, headers.Get("Accept-Language"), "ru-RU")
}

func TestFetcher_Fetch_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	_, err := f.Fetch(context.Background(), ingest.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}

func TestFetcher_Fetch_FollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>landed</h1></body></html>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	resp, err := f.Fetch(context.Background(), ingest.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, "landed", resp.Document.Find("h1").Text())
}

func TestFetcher_Fetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	f := New(Config{Timeout: 10 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, ingest.FetchRequest{URL: srv.URL})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Fetch_RequestTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	f := New(Config{Timeout: 100 * time.Millisecond})
	_, err := f.Fetch(context.Background(), ingest.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}

func TestFetcher_Fetch_DefaultUserAgent(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	require.Equal(t, defaultUserAgent, f.cfg.UserAgent)
	require.Equal(t, 30*time.Second, f.cfg.Timeout)
}
