package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fetchURL(t *testing.T, tool *FetchTool, url string) (string, bool) {
	t.Helper()
	params, _ := json.Marshal(map[string]string{"url": url})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute returned a Go error: %v", err)
	}
	return res.Content, res.IsError
}

func TestFetchToolReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "steward/") {
			t.Errorf("unexpected user agent: %q", ua)
		}
		w.Write([]byte("page body"))
	}))
	defer srv.Close()

	tool := NewFetchTool(5 * time.Second)
	content, isErr := fetchURL(t, tool, srv.URL)
	if isErr {
		t.Fatalf("unexpected tool error: %s", content)
	}
	if content != "page body" {
		t.Fatalf("wrong body: %q", content)
	}
}

func TestFetchToolRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	tool := NewFetchTool(5 * time.Second)
	content, isErr := fetchURL(t, tool, srv.URL)
	if isErr {
		t.Fatalf("should succeed after retries: %s", content)
	}
	if content != "recovered" || calls.Load() != 3 {
		t.Fatalf("retry behavior wrong: content=%q calls=%d", content, calls.Load())
	}
}

func TestFetchToolDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewFetchTool(5 * time.Second)
	content, isErr := fetchURL(t, tool, srv.URL)
	if !isErr || !strings.Contains(content, "status 404") {
		t.Fatalf("404 should be a tool error: %q", content)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestFetchToolTruncatesLargeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", maxFetchBytes+100)))
	}))
	defer srv.Close()

	tool := NewFetchTool(5 * time.Second)
	content, isErr := fetchURL(t, tool, srv.URL)
	if isErr {
		t.Fatalf("unexpected tool error: %s", content)
	}
	if !strings.HasSuffix(content, "(truncated)") {
		t.Fatal("oversized body should carry a truncation marker")
	}
	if len(content) > maxFetchBytes+50 {
		t.Fatalf("body not capped: %d bytes", len(content))
	}
}

func TestFetchToolRejectsBadSchemes(t *testing.T) {
	tool := NewFetchTool(time.Second)
	for _, url := range []string{"ftp://example.com", "file:///etc/passwd", "not a url", ""} {
		content, isErr := fetchURL(t, tool, url)
		if !isErr || !strings.Contains(content, "http") {
			t.Errorf("scheme %q should be rejected, got %q", url, content)
		}
	}
}
