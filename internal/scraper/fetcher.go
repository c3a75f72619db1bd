// Package scraper downloads article pages and extracts their body text.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/newslens/internal/bypass"
	"github.com/FranksOps/newslens/internal/fingerprint"
	"github.com/FranksOps/newslens/pkg/httpclient"
	"github.com/FranksOps/newslens/pkg/proxy"
	"github.com/FranksOps/newslens/pkg/ratelimit"
	"github.com/FranksOps/newslens/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchConfig configures page downloads.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	// InsecureSkipVerify disables certificate checks. Tests only.
	InsecureSkipVerify bool
}

// Page is one downloaded URL.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	// Challenge names the bot-protection vendor that served a challenge
	// instead of the page, if any.
	Challenge string
}

// Fetcher performs single URL fetches with browser-like TLS and headers.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher builds the transport once so connections are pooled across
// articles.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewLimiter(0, 0)
	}

	// The proxy for each request travels in its context so one transport
	// can serve every proxy in the pool.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(fingerprint.Options{
		Profile:            cfg.Fingerprint,
		Proxy:              proxyFunc,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: true, // consent cookies set on redirect hops
		MaxBodyBytes: cfg.MaxBodyBytes,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// Fetch downloads targetURL. Transport failures are returned as errors; any
// HTTP response, including error statuses, yields a Page.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	u, err := url.Parse(targetURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported url %q", targetURL)
	}

	if err := f.config.Limiter.Wait(ctx, u.Hostname()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UAPool.Pick())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}
	reqCtx := ctx
	if activeProxy != nil {
		reqCtx = context.WithValue(ctx, proxyKey, activeProxy)
	}

	start := time.Now()
	resp, err := f.client.Do(reqCtx, req)
	if err != nil {
		if activeProxy != nil {
			f.config.ProxyPool.Report(activeProxy, false)
		}
		return nil, err
	}
	if activeProxy != nil {
		f.config.ProxyPool.Report(activeProxy, true)
	}

	body, err := f.client.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	page := &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}
	page.Challenge = bypass.Analyze(bypass.Response{
		StatusCode: page.StatusCode,
		Header:     page.Header,
		Body:       page.Body,
	}, bypass.DefaultDetectors())

	return page, nil
}
