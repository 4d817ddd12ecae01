package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter rate-limits outbound requests per host, so a batch run
// hitting many evidence pages on the same domain stays polite while
// fetches to distinct domains proceed in parallel.
type Limiter struct {
	mu       sync.Mutex
	perHost  map[string]*rate.Limiter
	rateMax  rate.Limit
	burstMax int
}

// NewLimiter creates a limiter applying requestsPerSecond to each host
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		perHost:  make(map[string]*rate.Limiter),
		rateMax:  rate.Limit(requestsPerSecond),
		burstMax: burst,
	}
}

// Wait blocks until the host of rawURL has capacity or ctx is done
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host).Wait(ctx)
}

// Allow reports whether a request to rawURL may proceed right now,
// consuming a token if so
func (l *Limiter) Allow(rawURL string) bool {
	host, err := hostOf(rawURL)
	if err != nil {
		return false
	}
	return l.forHost(host).Allow()
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.perHost[host]
	if !ok {
		lim = rate.NewLimiter(l.rateMax, l.burstMax)
		l.perHost[host] = lim
	}
	return lim
}

func hostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
