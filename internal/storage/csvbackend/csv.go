// Package csvbackend exports analyzed articles as a flat CSV file for
// spreadsheet and plotting tools.
package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"title",
	"source",
	"published_at",
	"url",
	"relevance_score",
	"sentiment_score",
	"positive_percent",
	"neutral_percent",
	"negative_percent",
}

// New creates the CSV export at filePath, replacing any previous export.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open csv export: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return &csvBackend{file: f}, nil
}

// CleanTitle removes characters that are neither word characters nor
// whitespace and turns newlines into spaces.
func CleanTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, title)
	return strings.ReplaceAll(cleaned, "\n", " ")
}

func (b *csvBackend) Save(ctx context.Context, rec *storage.Record) error {
	a := rec.Article
	row := []string{
		CleanTitle(a.Title),
		a.Source,
		a.PublishedAt,
		a.URL,
		strconv.FormatFloat(a.Relevance, 'f', 4, 64),
		strconv.FormatFloat(a.Sentiment, 'f', 4, 64),
		strconv.Itoa(a.Percentages.Positive),
		strconv.Itoa(a.Percentages.Neutral),
		strconv.Itoa(a.Percentages.Negative),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek csv export: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// Query reads the export back. Run metadata is not part of the export, so
// records carry only article fields and Topic or RunID filters match nothing.
func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek csv export: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []*storage.Record{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var recs []*storage.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) != len(headers) {
			continue // skip malformed rows
		}

		relevance, _ := strconv.ParseFloat(row[4], 64)
		sentiment, _ := strconv.ParseFloat(row[5], 64)
		pos, _ := strconv.Atoi(row[6])
		neu, _ := strconv.Atoi(row[7])
		neg, _ := strconv.Atoi(row[8])

		recs = append(recs, &storage.Record{
			Article: article.Article{
				Title:       row[0],
				Source:      row[1],
				PublishedAt: row[2],
				URL:         row[3],
				Relevance:   relevance,
				Sentiment:   sentiment,
				Percentages: article.Percentages{Positive: pos, Neutral: neu, Negative: neg},
			},
		})
	}

	return storage.Apply(recs, filter), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
