// Package rss implements source.Provider over RSS/Atom search feeds.
package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/pkg/httpclient"
)

const (
	DefaultHeadlinesURL = "https://news.google.com/rss/search?q={query}+when:1d&hl=en-US&gl=US&ceid=US:en"
	DefaultSearchURL    = "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en"

	queryPlaceholder = "{query}"
)

var ErrNoPlaceholder = errors.New("rss: feed url must contain " + queryPlaceholder)

type Config struct {
	// HeadlinesURL and SearchURL are feed URL templates; {query} is replaced
	// with the escaped search term.
	HeadlinesURL string
	SearchURL    string
	Timeout      time.Duration
	Logger       *slog.Logger
}

type Client struct {
	headlinesURL string
	searchURL    string
	http         *httpclient.Client
	logger       *slog.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.HeadlinesURL == "" {
		cfg.HeadlinesURL = DefaultHeadlinesURL
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	for _, tmpl := range []string{cfg.HeadlinesURL, cfg.SearchURL} {
		if !strings.Contains(tmpl, queryPlaceholder) {
			return nil, fmt.Errorf("%w: %q", ErrNoPlaceholder, tmpl)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, UserAgent: "newslens/1.0"})
	if err != nil {
		return nil, err
	}
	return &Client{
		headlinesURL: cfg.HeadlinesURL,
		searchURL:    cfg.SearchURL,
		http:         hc,
		logger:       cfg.Logger,
	}, nil
}

func (c *Client) TopHeadlines(ctx context.Context, query string, limit int) ([]article.RawArticle, error) {
	return c.fetch(ctx, c.headlinesURL, query, limit)
}

func (c *Client) Everything(ctx context.Context, query string, limit int) ([]article.RawArticle, error) {
	return c.fetch(ctx, c.searchURL, query, limit)
}

func (c *Client) fetch(ctx context.Context, tmpl, query string, limit int) ([]article.RawArticle, error) {
	if limit <= 0 {
		return nil, nil
	}
	feedURL := strings.ReplaceAll(tmpl, queryPlaceholder, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := c.http.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpclient.StatusError{URL: feedURL, StatusCode: resp.StatusCode, Body: body}
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rss: parse %s: %w", feedURL, err)
	}
	c.logger.Debug("feed parsed", "url", feedURL, "items", len(feed.Items))

	out := make([]article.RawArticle, 0, min(len(feed.Items), limit))
	for _, item := range feed.Items {
		if len(out) == limit {
			break
		}
		out = append(out, toRaw(feed, item))
	}
	return out, nil
}

func toRaw(feed *gofeed.Feed, item *gofeed.Item) article.RawArticle {
	raw := article.RawArticle{
		Title:       article.Trim(item.Title),
		Description: article.Trim(item.Description),
		URL:         item.Link,
		SourceName:  sourceName(feed, item),
	}
	switch {
	case item.PublishedParsed != nil:
		raw.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		raw.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		raw.PublishedAt = item.Published
	}
	return raw
}

func sourceName(feed *gofeed.Feed, item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if feed.Title != "" {
		return feed.Title
	}
	if u, err := url.Parse(item.Link); err == nil {
		return u.Hostname()
	}
	return ""
}
