// Package source fetches raw article records for a topic from a news
// provider.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/metrics"
)

const (
	MinCount = 1
	MaxCount = 50

	DefaultHeadlineRatio = 0.5
	DefaultHeadlineCap   = 20
)

// ErrInvalidCount is returned when the requested article count is outside
// MinCount..MaxCount.
var ErrInvalidCount = errors.New("article count must be between 1 and 50")

// Provider abstracts a news search backend. Implementations return at most
// limit records.
type Provider interface {
	TopHeadlines(ctx context.Context, query string, limit int) ([]article.RawArticle, error)
	Everything(ctx context.Context, query string, limit int) ([]article.RawArticle, error)
}

// Fetcher splits a request for n articles between a provider's headlines
// and its full search.
type Fetcher struct {
	Provider      Provider
	HeadlineRatio float64
	HeadlineCap   int
	Logger        *slog.Logger
}

func NewFetcher(p Provider, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Provider:      p,
		HeadlineRatio: DefaultHeadlineRatio,
		HeadlineCap:   DefaultHeadlineCap,
		Logger:        logger,
	}
}

// HeadlineLimit is the number of headlines requested out of n.
func (f *Fetcher) HeadlineLimit(n int) int {
	return min(int(float64(n)*f.HeadlineRatio), f.HeadlineCap)
}

// Fetch returns up to n records, headlines first. A failed call is logged
// and contributes nothing; Fetch itself only fails on an invalid n.
func (f *Fetcher) Fetch(ctx context.Context, topic string, n int) ([]article.RawArticle, error) {
	if n < MinCount || n > MaxCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out []article.RawArticle

	if limit := f.HeadlineLimit(n); limit > 0 {
		headlines, err := f.Provider.TopHeadlines(ctx, topic, limit)
		metrics.RecordSource("top_headlines", err)
		if err != nil {
			logger.Warn("search call failed", "call", "top_headlines", "err", err)
		} else {
			out = append(out, headlines...)
		}
	}

	if limit := n - len(out); limit > 0 {
		everything, err := f.Provider.Everything(ctx, topic, limit)
		metrics.RecordSource("everything", err)
		if err != nil {
			logger.Warn("search call failed", "call", "everything", "err", err)
		} else {
			out = append(out, everything...)
		}
	}

	if len(out) > n {
		out = out[:n]
	}
	logger.Debug("fetched articles", "topic", topic, "requested", n, "fetched", len(out))
	return out, nil
}
