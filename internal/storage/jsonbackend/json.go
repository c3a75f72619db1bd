// Package jsonbackend keeps run history as an append-only NDJSON file, one
// storage.Record per line.
package jsonbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/newslens/internal/storage"
)

var _ storage.Backend = (*Log)(nil)

// Log is an NDJSON history file. Writes go through one append handle;
// each query reads the file afresh so records appended by other processes
// are seen.
type Log struct {
	path string

	mu  sync.Mutex
	out *os.File
	enc *json.Encoder
}

// New opens path for appending, creating it when missing.
func New(path string) (storage.Backend, error) {
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return &Log{path: path, out: out, enc: json.NewEncoder(out)}, nil
}

// Save appends rec as one line.
func (l *Log) Save(ctx context.Context, rec *storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	return nil
}

// Query decodes every record and applies filter. A record cut short at the
// end of the file, as left by an interrupted run, is ignored; damage
// anywhere else is an error.
func (l *Log) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	in, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", l.path, err)
	}
	defer in.Close()

	var recs []*storage.Record
	dec := json.NewDecoder(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var r storage.Record
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(recs)+1, err)
		}
		recs = append(recs, &r)
	}
	return storage.Apply(recs, filter), nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
