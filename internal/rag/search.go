package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cynthialmy/llm-decision-flow/internal/cache"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/util"
	"github.com/cynthialmy/llm-decision-flow/internal/worker"
)

const (
	serperURL        = "https://google.serper.dev/search"
	wikipediaAPIURL  = "https://en.wikipedia.org/w/api.php"
	wikipediaResults = 3
)

// SearchResultItem is one external search hit
type SearchResultItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// ExternalSearcher queries Serper and Wikipedia with a domain
// allowlist. Requests are paced per-domain and responses cached.
type ExternalSearcher struct {
	httpClient *http.Client
	serperKey  string
	allowlist  []string
	maxResults int
	limiter    *worker.Limiter
	respCache  cache.Cache
}

// NewExternalSearcher creates a searcher from configuration.
// respCache may be nil.
func NewExternalSearcher(cfg model.SearchConfig, httpCfg model.HTTPConfig, respCache cache.Cache) *ExternalSearcher {
	allowlist := make([]string, 0, len(cfg.Allowlist))
	for _, entry := range cfg.Allowlist {
		if trimmed := strings.ToLower(strings.TrimSpace(entry)); trimmed != "" {
			allowlist = append(allowlist, trimmed)
		}
	}

	maxResults := cfg.MaxResultsPerQuery
	if maxResults <= 0 {
		maxResults = 5
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}

	return &ExternalSearcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
		},
		serperKey:  cfg.SerperAPIKey,
		allowlist:  allowlist,
		maxResults: maxResults,
		limiter:    worker.NewLimiter(rps, 5),
		respCache:  respCache,
	}
}

// Search queries all configured backends for a single query. Returns
// allowlist-filtered results; may be empty. Backend failures degrade
// to fewer results, never to an error.
func (s *ExternalSearcher) Search(ctx context.Context, query string) []SearchResultItem {
	var results []SearchResultItem
	if s.serperKey != "" {
		results = append(results, s.serperSearch(ctx, query)...)
	}
	results = append(results, s.wikipediaSearch(ctx, query)...)
	return results
}

// allowedDomain checks the URL host against the allowlist
func (s *ExternalSearcher) allowedDomain(rawURL string) bool {
	if len(s.allowlist) == 0 {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, domain := range s.allowlist {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

// serperSearch queries the Serper API
func (s *ExternalSearcher) serperSearch(ctx context.Context, query string) []SearchResultItem {
	cacheKey := cache.CacheKey("serper:" + query)
	if items, ok := s.cachedResults(cacheKey); ok {
		return items
	}

	if err := s.limiter.Wait(ctx, serperURL); err != nil {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{"q": query, "num": s.maxResults})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperURL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("X-API-KEY", s.serperKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil
	}

	var items []SearchResultItem
	for _, result := range decoded.Organic {
		if len(items) >= s.maxResults {
			break
		}
		if !s.allowedDomain(result.Link) {
			continue
		}
		parsed, _ := url.Parse(result.Link)
		host := ""
		if parsed != nil {
			host = parsed.Host
		}
		items = append(items, SearchResultItem{
			Title:   result.Title,
			Snippet: result.Snippet,
			URL:     result.Link,
			Source:  host,
		})
	}

	s.storeResults(cacheKey, items)
	return items
}

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// wikipediaSearch queries the Wikipedia search API. Snippets come
// back as HTML fragments and are stripped to plain text.
func (s *ExternalSearcher) wikipediaSearch(ctx context.Context, query string) []SearchResultItem {
	cacheKey := cache.CacheKey("wikipedia:" + query)
	if items, ok := s.cachedResults(cacheKey); ok {
		return items
	}

	if err := s.limiter.Wait(ctx, wikipediaAPIURL); err != nil {
		return nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikipediaAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var decoded wikipediaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil
	}

	var items []SearchResultItem
	for i, result := range decoded.Query.Search {
		if i >= wikipediaResults {
			break
		}
		pageURL := fmt.Sprintf("https://en.wikipedia.org/wiki/%s", strings.ReplaceAll(result.Title, " ", "_"))
		if !s.allowedDomain(pageURL) {
			continue
		}
		items = append(items, SearchResultItem{
			Title:   result.Title,
			Snippet: stripTags(result.Snippet),
			URL:     pageURL,
			Source:  "wikipedia.org",
		})
	}

	s.storeResults(cacheKey, items)
	return items
}

func (s *ExternalSearcher) cachedResults(key string) ([]SearchResultItem, bool) {
	if s.respCache == nil {
		return nil, false
	}
	data, found := s.respCache.Get(key)
	if !found {
		return nil, false
	}
	var items []SearchResultItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *ExternalSearcher) storeResults(key string, items []SearchResultItem) {
	if s.respCache == nil || len(items) == 0 {
		return
	}
	if data, err := json.Marshal(items); err == nil {
		_ = s.respCache.Set(key, data, 0)
	}
}
