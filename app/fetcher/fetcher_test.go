package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcher_Run_CachesPages(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits++
		fmt.Fprint(w, "<html><body>page</body></html>")
	}))
	defer server.Close()

	f := NewFetcher("test-agent", 5*time.Second, 100)

	first, err := f.Run(context.Background(), server.URL+"/p/a")
	if err != nil {
		t.Fatalf("First fetch failed: %v", err)
	}

	second, err := f.Run(context.Background(), server.URL+"/p/a")
	if err != nil {
		t.Fatalf("Second fetch failed: %v", err)
	}

	if first != second {
		t.Error("Cached fetch returned different content")
	}
	if hits != 1 {
		t.Errorf("Expected 1 origin hit, got %d", hits)
	}
}

func TestFetcher_Run_NonOKIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher("test-agent", 5*time.Second, 100)

	_, err := f.Run(context.Background(), server.URL+"/p/gone")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestFetcher_Run_HonorsRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	f := NewFetcher("test-agent", 5*time.Second, 100)

	if _, err := f.Run(context.Background(), server.URL+"/p/public"); err != nil {
		t.Errorf("Allowed path should fetch, got %v", err)
	}

	_, err := f.Run(context.Background(), server.URL+"/private/page")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Disallowed path should be unavailable, got %v", err)
	}
}

func TestFetcher_Run_SendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	f := NewFetcher("custom-agent/1.0", 5*time.Second, 100)
	if _, err := f.Run(context.Background(), server.URL+"/p/a"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotAgent != "custom-agent/1.0" {
		t.Errorf("Expected custom user agent, got %q", gotAgent)
	}
}
