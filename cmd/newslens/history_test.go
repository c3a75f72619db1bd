package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/storage"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("24h", now)
	if err != nil || !got.Equal(now.Add(-24*time.Hour)) {
		t.Errorf("parseSince(24h) = %v, %v", got, err)
	}
	got, err = parseSince("2026-02-01T00:00:00Z", now)
	if err != nil || !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parseSince(rfc3339) = %v, %v", got, err)
	}
	if _, err := parseSince("yesterday", now); err == nil {
		t.Error("expected error")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.ndjson")

	b, err := openBackend(ctx, "json", path)
	if err != nil {
		t.Fatal(err)
	}
	recs := storage.NewRecords("0123456789abcdef", "Solar", time.Now(), []article.Article{
		{Title: "Panels get cheaper", Source: "Wire", Relevance: 0.61, Sentiment: 0.4},
	})
	if err := storage.SaveAll(ctx, b, recs); err != nil {
		t.Fatal(err)
	}
	b.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"history", "--store", "json", "--store-dsn", path, "--topic", "solar"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("history error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"TITLE", "01234567", "Solar", "0.6100", "Panels get cheaper"} {
		if !strings.Contains(got, want) {
			t.Errorf("history output missing %q:\n%s", want, got)
		}
	}
}

func TestHistory_NoStore(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"history"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "no history store") {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestWriteHistory_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := writeHistory(&out, nil); err != nil {
		t.Fatal(err)
	}
	if out.String() != "No stored articles match.\n" {
		t.Errorf("got %q", out.String())
	}
}
