// Package sqlite stores run history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/FranksOps/newslens/internal/storage"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

// analyzed_at holds Unix nanoseconds so range filters compare numerically.
const schema = `
CREATE TABLE IF NOT EXISTS articles (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	run_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	analyzed_at INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	content TEXT NOT NULL,
	source TEXT NOT NULL,
	published_at TEXT NOT NULL,
	url TEXT NOT NULL,
	relevance REAL NOT NULL,
	sentiment REAL NOT NULL,
	positive INTEGER NOT NULL,
	neutral INTEGER NOT NULL,
	negative INTEGER NOT NULL,
	highlights TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_analyzed_at ON articles (analyzed_at);
CREATE INDEX IF NOT EXISTS articles_run_id ON articles (run_id);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, rec *storage.Record) error {
	highlights, err := json.Marshal(rec.Article.Highlights)
	if err != nil {
		return fmt.Errorf("encode highlights: %w", err)
	}

	query := `
	INSERT INTO articles (
		id, run_id, topic, analyzed_at, title, description, content, source, published_at, url,
		relevance, sentiment, positive, neutral, negative, highlights
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	a := rec.Article
	_, err = b.db.ExecContext(ctx, query,
		rec.ID, rec.RunID, rec.Topic, rec.AnalyzedAt.UnixNano(),
		a.Title, a.Description, a.Content, a.Source, a.PublishedAt, a.URL,
		a.Relevance, a.Sentiment, a.Percentages.Positive, a.Percentages.Neutral, a.Percentages.Negative,
		string(highlights),
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, topic, analyzed_at, title, description, content, source, published_at, url,
		relevance, sentiment, positive, neutral, negative, highlights FROM articles WHERE 1=1`
	args := []any{}

	if filter.Topic != "" {
		query += ` AND topic = ? COLLATE NOCASE`
		args = append(args, filter.Topic)
	}
	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Since != nil {
		query += ` AND analyzed_at >= ?`
		args = append(args, filter.Since.UnixNano())
	}
	if filter.MinRelevance != 0 {
		query += ` AND relevance >= ?`
		args = append(args, filter.MinRelevance)
	}

	query += ` ORDER BY analyzed_at DESC, seq DESC`

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(filter.Offset, 0))
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var results []*storage.Record
	for rows.Next() {
		var r storage.Record
		var analyzedAt int64
		var highlights string
		a := &r.Article

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Topic, &analyzedAt,
			&a.Title, &a.Description, &a.Content, &a.Source, &a.PublishedAt, &a.URL,
			&a.Relevance, &a.Sentiment, &a.Percentages.Positive, &a.Percentages.Neutral, &a.Percentages.Negative,
			&highlights,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		r.AnalyzedAt = time.Unix(0, analyzedAt).UTC()
		if err := json.Unmarshal([]byte(highlights), &a.Highlights); err != nil {
			return nil, fmt.Errorf("decode highlights: %w", err)
		}

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
