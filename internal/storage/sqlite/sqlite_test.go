package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	older := storage.NewRecords("run-a", "Interest Rates", now.Add(-2*time.Hour), []article.Article{
		{
			Title: "Rates hold", Description: "Central banks pause", Content: "Rates hold. More.",
			Source: "Wire", PublishedAt: "2024-05-01T10:00:00Z", URL: "https://example.com/a",
			Relevance: 0.61, Sentiment: 0.3, Percentages: article.Percentages{Positive: 30, Neutral: 70},
			Highlights: []string{"Rates hold."},
		},
		{Title: "Second", Relevance: 0.25, Sentiment: -0.1, Percentages: article.Percentages{Negative: 10, Neutral: 90}},
	})
	newer := storage.NewRecords("run-b", "cars", now.Add(-time.Hour), []article.Article{
		{Title: "EV sales", Relevance: 0.8},
	})
	if err := storage.SaveAll(ctx, b, append(older, newer...)); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(all))
	}
	wantOrder := []string{newer[0].ID, older[1].ID, older[0].ID}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, all[i].ID, id)
		}
	}

	got := all[2]
	want := older[0]
	if got.RunID != want.RunID || got.Topic != want.Topic || !got.AnalyzedAt.Equal(want.AnalyzedAt) {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Article.Content != want.Article.Content || got.Article.Relevance != 0.61 ||
		got.Article.Percentages != want.Article.Percentages || len(got.Article.Highlights) != 1 {
		t.Errorf("article mismatch: %+v", got.Article)
	}

	byTopic, _ := b.Query(ctx, storage.Filter{Topic: "interest rates"})
	if len(byTopic) != 2 {
		t.Errorf("Expected 2 results for topic, got %d", len(byTopic))
	}

	byRun, _ := b.Query(ctx, storage.Filter{RunID: "run-b"})
	if len(byRun) != 1 || byRun[0].Article.Title != "EV sales" {
		t.Errorf("unexpected run filter result %+v", byRun)
	}

	past := now.Add(-90 * time.Minute)
	since, _ := b.Query(ctx, storage.Filter{Since: &past})
	if len(since) != 1 {
		t.Errorf("Expected 1 result since %v, got %d", past, len(since))
	}

	relevant, _ := b.Query(ctx, storage.Filter{MinRelevance: 0.5})
	if len(relevant) != 2 {
		t.Errorf("Expected 2 results with relevance >= 0.5, got %d", len(relevant))
	}

	offset, _ := b.Query(ctx, storage.Filter{Offset: 2})
	if len(offset) != 1 || offset[0].ID != older[0].ID {
		t.Errorf("offset without limit: %+v", offset)
	}

	page, _ := b.Query(ctx, storage.Filter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != older[1].ID {
		t.Errorf("limit+offset: %+v", page)
	}
}
