// Package newsapi implements source.Provider against the NewsAPI v2 REST API.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/pkg/httpclient"
)

const DefaultBaseURL = "https://newsapi.org/v2"

// maxPageSize is the largest pageSize NewsAPI accepts.
const maxPageSize = 100

// APIError is a non-ok payload returned by NewsAPI.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("newsapi: %s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	Logger   *slog.Logger
	// Transport overrides the HTTP transport. Tests only.
	Transport http.RoundTripper
}

type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *httpclient.Client
	policy   *bluemonday.Policy
	logger   *slog.Logger
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("newsapi: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	hc, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		UserAgent: "newslens/1.0",
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		language: cfg.Language,
		http:     hc,
		policy:   bluemonday.StrictPolicy(),
		logger:   cfg.Logger,
	}, nil
}

type response struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) TopHeadlines(ctx context.Context, query string, limit int) ([]article.RawArticle, error) {
	return c.search(ctx, "top-headlines", query, limit, nil)
}

func (c *Client) Everything(ctx context.Context, query string, limit int) ([]article.RawArticle, error) {
	return c.search(ctx, "everything", query, limit, url.Values{"sortBy": {"relevancy"}})
}

func (c *Client) search(ctx context.Context, endpoint, query string, limit int, extra url.Values) ([]article.RawArticle, error) {
	if limit <= 0 {
		return nil, nil
	}
	params := url.Values{
		"q":        {query},
		"language": {c.language},
		"pageSize": {strconv.Itoa(min(limit, maxPageSize))},
	}
	for k, v := range extra {
		params[k] = v
	}
	u := c.baseURL + "/" + endpoint + "?" + params.Encode()

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var resp response
	if err := c.http.GetJSON(ctx, u, header, &resp); err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			apiErr := &APIError{StatusCode: se.StatusCode, Code: "http_error", Message: http.StatusText(se.StatusCode)}
			var payload response
			if json.Unmarshal(se.Body, &payload) == nil && payload.Code != "" {
				apiErr.Code, apiErr.Message = payload.Code, payload.Message
			}
			return nil, apiErr
		}
		return nil, fmt.Errorf("newsapi %s: %w", endpoint, err)
	}
	if resp.Status != "ok" {
		return nil, &APIError{StatusCode: http.StatusOK, Code: resp.Code, Message: resp.Message}
	}

	c.logger.Debug("newsapi response", "endpoint", endpoint, "total", resp.TotalResults, "returned", len(resp.Articles))

	out := make([]article.RawArticle, 0, min(len(resp.Articles), limit))
	for _, a := range resp.Articles {
		if len(out) == limit {
			break
		}
		out = append(out, article.RawArticle{
			Title:       article.Trim(a.Title),
			Description: c.clean(a.Description),
			SourceName:  a.Source.Name,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
		})
	}
	return out, nil
}

// clean strips markup some publishers leave in descriptions. The sentinel
// marker survives because it carries no tags.
func (c *Client) clean(s string) string {
	return article.Trim(html.UnescapeString(c.policy.Sanitize(s)))
}
