// Package postgres stores run history in PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FranksOps/newslens/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	run_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	content TEXT NOT NULL,
	source TEXT NOT NULL,
	published_at TEXT NOT NULL,
	url TEXT NOT NULL,
	relevance DOUBLE PRECISION NOT NULL,
	sentiment DOUBLE PRECISION NOT NULL,
	positive INTEGER NOT NULL,
	neutral INTEGER NOT NULL,
	negative INTEGER NOT NULL,
	highlights TEXT[] NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_analyzed_at ON articles (analyzed_at);
CREATE INDEX IF NOT EXISTS articles_run_id ON articles (run_id);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, rec *storage.Record) error {
	query := `
	INSERT INTO articles (
		id, run_id, topic, analyzed_at, title, description, content, source, published_at, url,
		relevance, sentiment, positive, neutral, negative, highlights
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	a := rec.Article
	highlights := a.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	_, err := b.pool.Exec(ctx, query,
		rec.ID, rec.RunID, rec.Topic, rec.AnalyzedAt,
		a.Title, a.Description, a.Content, a.Source, a.PublishedAt, a.URL,
		a.Relevance, a.Sentiment, a.Percentages.Positive, a.Percentages.Neutral, a.Percentages.Negative,
		highlights,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	query := `SELECT id, run_id, topic, analyzed_at, title, description, content, source, published_at, url,
		relevance, sentiment, positive, neutral, negative, highlights FROM articles WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Topic != "" {
		query += fmt.Sprintf(` AND lower(topic) = lower($%d)`, paramCount)
		args = append(args, filter.Topic)
		paramCount++
	}
	if filter.RunID != "" {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		args = append(args, filter.RunID)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND analyzed_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}
	if filter.MinRelevance != 0 {
		query += fmt.Sprintf(` AND relevance >= $%d`, paramCount)
		args = append(args, filter.MinRelevance)
		paramCount++
	}

	query += ` ORDER BY analyzed_at DESC, seq DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*storage.Record, error) {
		var r storage.Record
		a := &r.Article
		err := row.Scan(
			&r.ID, &r.RunID, &r.Topic, &r.AnalyzedAt,
			&a.Title, &a.Description, &a.Content, &a.Source, &a.PublishedAt, &a.URL,
			&a.Relevance, &a.Sentiment, &a.Percentages.Positive, &a.Percentages.Neutral, &a.Percentages.Negative,
			&a.Highlights,
		)
		r.AnalyzedAt = r.AnalyzedAt.UTC()
		return &r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
