package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowConsumesBurst(t *testing.T) {
	limiter := NewLimiter(0.1, 2)

	if !limiter.Allow("http://example.com/a") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow("http://example.com/b") {
		t.Fatal("second request is within burst")
	}
	if limiter.Allow("http://example.com/c") {
		t.Error("third request should be throttled")
	}
}

func TestLimiter_HostsAreIndependent(t *testing.T) {
	limiter := NewLimiter(0.1, 1)

	if !limiter.Allow("http://slow.example/page") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("http://slow.example/other") {
		t.Error("same host should be throttled")
	}
	if !limiter.Allow("http://fast.example/page") {
		t.Error("a different host must not be affected")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)

	// Drain the burst
	if err := limiter.Wait(context.Background(), "http://example.com"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "http://example.com"); err == nil {
		t.Error("expected a context error while throttled")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(1, 1)
	if limiter.Allow("://not-a-url") {
		t.Error("unparseable URL must be denied")
	}
}
