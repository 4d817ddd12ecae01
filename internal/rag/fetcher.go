package rag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/util"
	"github.com/cynthialmy/llm-decision-flow/internal/worker"
)

// PageFetcher pulls the visible text of an external result page so
// enrichment persistence can index more than the search snippet.
// Fetches respect robots.txt and are rate-limited per domain.
type PageFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
}

// NewPageFetcher creates a page fetcher from configuration
func NewPageFetcher(cfg model.SearchConfig, httpCfg model.HTTPConfig) *PageFetcher {
	maxBytes := cfg.FetchMaxBytes
	if maxBytes <= 0 {
		maxBytes = 1_000_000
	}

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(httpCfg.UserAgent, cfg.Timeout())
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}

	return &PageFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: httpCfg.UserAgent,
		maxBytes:  maxBytes,
		robots:    robots,
		limiter:   worker.NewLimiter(rps, 5),
	}
}

// FetchText retrieves a page and reduces it to visible text
func (f *PageFetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		if crawlDelay > 0 && crawlDelay <= 10*time.Second {
			select {
			case <-time.After(crawlDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return strings.Join(strings.Fields(visibleText(doc)), " "), nil
}
