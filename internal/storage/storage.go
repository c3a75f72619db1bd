// Package storage defines the history store for analyzed articles.
package storage

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/newslens/internal/article"
)

// Record is one analyzed article from one run.
type Record struct {
	ID         string          `json:"id"`
	RunID      string          `json:"run_id"`
	Topic      string          `json:"topic"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
	Article    article.Article `json:"article"`
}

// Filter allows querying for specific Records. Zero values match anything.
type Filter struct {
	Topic        string
	RunID        string
	Since        *time.Time
	MinRelevance float64
	Limit        int
	Offset       int
}

// Backend defines the interface for storing and querying records. Query
// returns newest first.
type Backend interface {
	Save(ctx context.Context, rec *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}

// NewRecords wraps a run's ranked articles in records sharing runID.
func NewRecords(runID, topic string, at time.Time, articles []article.Article) []*Record {
	recs := make([]*Record, len(articles))
	for i, a := range articles {
		recs[i] = &Record{
			ID:         uuid.NewString(),
			RunID:      runID,
			Topic:      topic,
			AnalyzedAt: at.UTC(),
			Article:    a,
		}
	}
	return recs
}

// SaveAll saves recs in order, stopping at the first error.
func SaveAll(ctx context.Context, b Backend, recs []*Record) error {
	for _, r := range recs {
		if err := b.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether r passes the non-paging parts of f. Topic
// comparison ignores case.
func (f Filter) Matches(r *Record) bool {
	if f.Topic != "" && !strings.EqualFold(r.Topic, f.Topic) {
		return false
	}
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.Since != nil && r.AnalyzedAt.Before(*f.Since) {
		return false
	}
	if f.MinRelevance != 0 && r.Article.Relevance < f.MinRelevance {
		return false
	}
	return true
}

// Apply filters recs held in insertion order and returns the requested page,
// newest first. File backends use it in place of a query engine.
func Apply(recs []*Record, f Filter) []*Record {
	out := make([]*Record, 0, len(recs))
	for _, r := range recs {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	slices.Reverse(out)
	// Later runs can carry earlier timestamps when appended from several
	// machines; order by time, keeping insertion order for ties.
	slices.SortStableFunc(out, func(a, b *Record) int {
		return b.AnalyzedAt.Compare(a.AnalyzedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Record{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out
}
