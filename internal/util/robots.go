// Package util holds small HTTP plumbing shared by the evidence
// fetchers: robots.txt gating and proxy resolution.
package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsCacheTTL bounds how long a host's robots.txt ruling is reused
const robotsCacheTTL = time.Hour

type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsChecker gates enrichment page fetches on the target host's
// robots.txt. Rulings are cached per host so a batch run touching
// many pages on one domain fetches robots.txt once.
type RobotsChecker struct {
	mu         sync.Mutex
	byHost     map[string]robotsEntry
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a checker identifying itself as userAgent
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		byHost:     make(map[string]robotsEntry),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// CanFetch reports whether rawURL may be fetched, and the crawl delay
// the host requests. When robots.txt itself cannot be retrieved the
// fetch is allowed: an unreachable policy file is not a prohibition.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.rulesFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	allowed := data.TestAgent(parsed.Path, r.userAgent)
	var delay time.Duration
	if group := data.FindGroup(r.userAgent); group != nil {
		delay = group.CrawlDelay
	}
	return allowed, delay, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	entry, ok := r.byHost[target.Host]
	r.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < robotsCacheTTL {
		return entry.data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.byHost[target.Host] = robotsEntry{data: data, fetchedAt: time.Now()}
	r.mu.Unlock()
	return data, nil
}
