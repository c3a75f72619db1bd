package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsAuditor fetches, caches and enforces robots.txt per host.
type RobotsAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	mu      sync.Mutex
	cache   map[string]*robotstxt.RobotsData // nil entry: fetched, no rules
}

// NewRobotsAuditor creates an auditor that downloads robots.txt with
// fetcher.
func NewRobotsAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsAuditor{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether agent may fetch targetURL. Hosts whose
// robots.txt cannot be fetched or parsed are treated as allowing everything.
func (r *RobotsAuditor) IsAllowed(ctx context.Context, targetURL, agent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}

	data := r.rules(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, agent), nil
}

func (r *RobotsAuditor) rules(ctx context.Context, host string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[host]; ok {
		return data
	}

	var data *robotstxt.RobotsData
	page, err := r.fetcher.Fetch(ctx, host+"/robots.txt")
	switch {
	case err != nil:
		r.logger.Debug("robots.txt fetch failed, allowing", "host", host, "err", err)
	case page.StatusCode >= 400:
		// no robots.txt
	default:
		data, err = robotstxt.FromStatusAndBytes(page.StatusCode, page.Body)
		if err != nil {
			r.logger.Debug("robots.txt parse failed, allowing", "host", host, "err", err)
			data = nil
		}
	}

	r.cache[host] = data
	return data
}
