// Package pipeline turns raw search results into a ranked, scored list of
// relevant articles.
package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/FranksOps/newslens/internal/analyzer"
	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/embed"
	"github.com/FranksOps/newslens/internal/metrics"
	"github.com/FranksOps/newslens/internal/sentiment"
)

// DefaultThreshold is the minimum relevance an article needs to be kept.
const DefaultThreshold = 0.2

var (
	ErrNothingFetched = errors.New("no articles were fetched")
	ErrNoRelevant     = errors.New("no valid articles could be processed")
)

// Source returns raw records for a topic.
type Source interface {
	Fetch(ctx context.Context, topic string, n int) ([]article.RawArticle, error)
}

// Extractor returns the body text of an article URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Result is the outcome of one run.
type Result struct {
	Topic       string
	Articles    []article.Article
	Fetched     int
	Omitted     int
	OmitReasons map[string]int
}

// Pipeline wires the per-run collaborators. Extractor may be nil, in which
// case every article keeps an empty Content.
type Pipeline struct {
	Source    Source
	Embedder  embed.Embedder
	Extractor Extractor
	Sentiment sentiment.Analyzer
	// Threshold is the minimum relevance kept. Zero means DefaultThreshold.
	Threshold float64
	// Highlights is the number of topic sentences kept per article.
	Highlights int
	// Progress receives the operator-facing progress lines. nil discards them.
	Progress io.Writer
	Logger   *slog.Logger
}

// Run fetches up to n articles about topic, filters, scores and ranks them.
func (p *Pipeline) Run(ctx context.Context, topic string, n int) (*Result, error) {
	if p.Source == nil || p.Embedder == nil || p.Sentiment == nil {
		return nil, errors.New("pipeline: source, embedder and sentiment analyzer are required")
	}
	logger := p.logger()

	p.progress("\nFetching articles for topic: '%s'\n", topic)
	raws, err := p.Source.Fetch(ctx, topic, n)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	p.progress("Fetched %d articles related to '%s'\n", len(raws), topic)
	if len(raws) == 0 {
		return nil, ErrNothingFetched
	}

	res, err := p.Filter(ctx, topic, raws)
	if err != nil {
		return nil, err
	}
	if len(res.Articles) == 0 {
		return res, ErrNoRelevant
	}

	if err := p.Annotate(ctx, res.Articles); err != nil {
		return nil, err
	}
	Rank(res.Articles)

	logger.Info("run complete", "topic", topic, "fetched", res.Fetched, "kept", len(res.Articles), "omitted", res.Omitted)
	return res, nil
}

// Filter drops unusable and irrelevant records and enriches the survivors
// with relevance, body text and highlights. Input order is preserved.
func (p *Pipeline) Filter(ctx context.Context, topic string, raws []article.RawArticle) (*Result, error) {
	logger := p.logger()
	threshold := p.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	res := &Result{Topic: topic, Fetched: len(raws), OmitReasons: make(map[string]int)}
	omit := func(reason string) {
		res.Omitted++
		res.OmitReasons[reason]++
		metrics.ArticlesOmittedTotal.WithLabelValues(reason).Inc()
	}

	topicVec, err := p.Embedder.Embed(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("embed topic: %w", err)
	}

	for _, raw := range raws {
		if reason := raw.OmitReason(); reason != "" {
			logger.Debug("article omitted", "reason", reason, "url", raw.URL)
			omit(reason)
			continue
		}

		vec, err := p.Embedder.Embed(ctx, raw.EmbeddingText())
		if err != nil {
			return nil, fmt.Errorf("embed article %q: %w", raw.Title, err)
		}
		relevance := embed.Cosine(topicVec, vec)
		metrics.RelevanceScore.Observe(relevance)
		if relevance < threshold {
			logger.Debug("article omitted", "reason", article.ReasonLowRelevance, "relevance", relevance, "url", raw.URL)
			omit(article.ReasonLowRelevance)
			continue
		}

		a := article.FromRaw(raw, relevance)
		if p.Extractor != nil {
			content, err := p.Extractor.Extract(ctx, raw.URL)
			if err != nil {
				logger.Debug("extraction failed", "url", raw.URL, "err", err)
				content = ""
			}
			a.Content = content
		}
		a.Highlights = analyzer.Highlights(a.Content, topic, p.Highlights)

		res.Articles = append(res.Articles, a)
		metrics.ArticlesAcceptedTotal.Inc()
		p.progress("Accepted: %s (Relevance: %.4f)\n", a.Title, a.Relevance)
	}

	if res.Omitted > 0 {
		p.progress("Omitted %d article(s) due to missing, invalid data, or low relevance.\n", res.Omitted)
	}
	return res, nil
}

// Annotate scores the sentiment of every article in place.
func (p *Pipeline) Annotate(ctx context.Context, articles []article.Article) error {
	for i := range articles {
		compound, err := p.Sentiment.Compound(ctx, articles[i].SentimentText())
		if err != nil {
			return fmt.Errorf("sentiment for %q: %w", articles[i].Title, err)
		}
		compound = sentiment.Clamp(compound)
		articles[i].Sentiment = compound
		articles[i].Percentages = sentiment.Breakdown(compound)
	}
	return nil
}

// Rank sorts articles by relevance, then by sentiment strength, both
// descending. Ties keep their input order.
func Rank(articles []article.Article) {
	slices.SortStableFunc(articles, func(a, b article.Article) int {
		if c := cmp.Compare(b.Relevance, a.Relevance); c != 0 {
			return c
		}
		return cmp.Compare(math.Abs(b.Sentiment), math.Abs(a.Sentiment))
	})
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Pipeline) progress(format string, args ...any) {
	if p.Progress != nil {
		fmt.Fprintf(p.Progress, format, args...)
	}
}
