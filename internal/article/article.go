// Package article defines the records that flow through a newslens run: the
// raw search result as delivered by a news provider and the scored Article
// built from it.
package article

import "strings"

// Placeholder values news providers use when they withhold an article.
const (
	RemovedMarker  = "[Removed]"
	RemovedURL     = "https://removed.com"
	EpochTimestamp = "1970-01-01T00:00:00Z"
)

// Omit reasons reported by RawArticle.OmitReason.
const (
	ReasonRemovedTitle       = "removed_title"
	ReasonRemovedDescription = "removed_description"
	ReasonRemovedSource      = "removed_source"
	ReasonEpochTimestamp     = "epoch_timestamp"
	ReasonRemovedURL         = "removed_url"
	ReasonMissingTitle       = "missing_title"
	ReasonMissingDescription = "missing_description"
	ReasonLowRelevance       = "low_relevance"
)

// RawArticle is a search result exactly as a provider returned it.
type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceName  string `json:"source"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
}

// OmitReason returns the first reason the record is unusable, or "" when
// it can be scored.
func (r RawArticle) OmitReason() string {
	switch {
	case r.Title == RemovedMarker:
		return ReasonRemovedTitle
	case r.Description == RemovedMarker:
		return ReasonRemovedDescription
	case r.SourceName == RemovedMarker:
		return ReasonRemovedSource
	case r.PublishedAt == EpochTimestamp:
		return ReasonEpochTimestamp
	case r.URL == RemovedURL:
		return ReasonRemovedURL
	case r.Title == "":
		return ReasonMissingTitle
	case r.Description == "":
		return ReasonMissingDescription
	}
	return ""
}

// Trim strips surrounding whitespace from a provider field. A value that is
// only whitespace is returned unchanged: it still counts as present.
func Trim(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return s
}

// EmbeddingText is the text compared against the topic embedding.
func (r RawArticle) EmbeddingText() string {
	return r.Title + " " + r.Description
}

// Percentages is the positive/neutral/negative split derived from a
// compound sentiment score. The three values always sum to 100.
type Percentages struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Article is a raw article that passed filtering, enriched with full text,
// relevance and sentiment.
type Article struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     string      `json:"full_content"`
	Source      string      `json:"source"`
	PublishedAt string      `json:"published_at"`
	URL         string      `json:"url"`
	Relevance   float64     `json:"relevance_score"`
	Sentiment   float64     `json:"sentiment_score"`
	Percentages Percentages `json:"sentiment_percentages"`
	Highlights  []string    `json:"highlights,omitempty"`
}

// FromRaw copies the descriptive fields of r into a new Article.
func FromRaw(r RawArticle, relevance float64) Article {
	return Article{
		Title:       r.Title,
		Description: r.Description,
		Source:      r.SourceName,
		PublishedAt: r.PublishedAt,
		URL:         r.URL,
		Relevance:   relevance,
	}
}

// SentimentText is the text handed to the sentiment analyzer.
func (a Article) SentimentText() string {
	return a.Title + ". " + a.Description
}
