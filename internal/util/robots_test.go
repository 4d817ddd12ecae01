package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_DisallowedPath(t *testing.T) {
	var robotsFetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("decisionflow", 5*time.Second)
	ctx := context.Background()

	allowed, _, err := checker.CanFetch(ctx, server.URL+"/private/report.html")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("disallowed path must be blocked")
	}

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/public/report.html")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("path outside the disallow rule must pass")
	}

	if got := robotsFetches.Load(); got != 1 {
		t.Errorf("robots.txt should be fetched once per host, got %d", got)
	}
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := NewRobotsChecker("decisionflow", 5*time.Second)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("a 404 robots.txt must allow fetching")
	}
}

func TestRobotsChecker_UnreachableHostAllows(t *testing.T) {
	checker := NewRobotsChecker("decisionflow", 200*time.Millisecond)
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if !allowed {
		t.Error("an unreachable robots.txt must not block the fetch")
	}
}

func TestRobotsChecker_BadURL(t *testing.T) {
	checker := NewRobotsChecker("decisionflow", time.Second)
	if _, _, err := checker.CanFetch(context.Background(), "://bad"); err == nil {
		t.Error("expected an error for an unparseable URL")
	}
}
