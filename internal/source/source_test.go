package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/FranksOps/newslens/internal/article"
)

type stubProvider struct {
	headlines, everything int
	headErr, allErr       error

	headLimit, allLimit int
	allCalled           bool
}

func records(prefix string, n int) []article.RawArticle {
	out := make([]article.RawArticle, n)
	for i := range out {
		out[i] = article.RawArticle{Title: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func (s *stubProvider) TopHeadlines(_ context.Context, _ string, limit int) ([]article.RawArticle, error) {
	s.headLimit = limit
	if s.headErr != nil {
		return nil, s.headErr
	}
	return records("head", min(limit, s.headlines)), nil
}

func (s *stubProvider) Everything(_ context.Context, _ string, limit int) ([]article.RawArticle, error) {
	s.allCalled = true
	s.allLimit = limit
	if s.allErr != nil {
		return nil, s.allErr
	}
	// Deliberately over-deliver to check truncation.
	return records("all", s.everything), nil
}

func TestFetcher_Split(t *testing.T) {
	tests := []struct {
		n, headlines, everything int
		wantHead, wantAll        int
		wantLen                  int
	}{
		{n: 20, headlines: 20, everything: 50, wantHead: 10, wantAll: 10, wantLen: 20},
		{n: 50, headlines: 50, everything: 50, wantHead: 20, wantAll: 30, wantLen: 50},
		{n: 7, headlines: 2, everything: 50, wantHead: 3, wantAll: 5, wantLen: 7},
		{n: 1, headlines: 5, everything: 5, wantHead: 0, wantAll: 1, wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			p := &stubProvider{headlines: tt.headlines, everything: tt.everything}
			got, err := NewFetcher(p, nil).Fetch(context.Background(), "go", tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantHead > 0 && p.headLimit != tt.wantHead {
				t.Errorf("headline limit = %d, want %d", p.headLimit, tt.wantHead)
			}
			if p.allLimit != tt.wantAll {
				t.Errorf("everything limit = %d, want %d", p.allLimit, tt.wantAll)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestFetcher_HeadlinesFirst(t *testing.T) {
	p := &stubProvider{headlines: 10, everything: 10}
	got, _ := NewFetcher(p, nil).Fetch(context.Background(), "go", 4)
	want := []string{"head-0", "head-1", "all-0", "all-1"}
	for i, w := range want {
		if got[i].Title != w {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Title, w)
		}
	}
}

func TestFetcher_PartialFailure(t *testing.T) {
	p := &stubProvider{headErr: errors.New("boom"), everything: 50}
	got, err := NewFetcher(p, nil).Fetch(context.Background(), "go", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.allLimit != 20 {
		t.Errorf("everything limit = %d, want 20", p.allLimit)
	}
	if len(got) != 20 {
		t.Errorf("len = %d, want 20", len(got))
	}

	p = &stubProvider{headlines: 10, allErr: errors.New("boom")}
	got, _ = NewFetcher(p, nil).Fetch(context.Background(), "go", 20)
	if len(got) != 10 {
		t.Errorf("len = %d, want 10 headlines", len(got))
	}
}

func TestFetcher_BothFail(t *testing.T) {
	p := &stubProvider{headErr: errors.New("down"), allErr: errors.New("down")}
	got, err := NewFetcher(p, nil).Fetch(context.Background(), "go", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestFetcher_SkipsEverythingWhenFull(t *testing.T) {
	p := &stubProvider{headlines: 50}
	f := NewFetcher(p, nil)
	f.HeadlineRatio = 1
	f.HeadlineCap = 50
	got, _ := f.Fetch(context.Background(), "go", 5)
	if p.allCalled {
		t.Error("everything should not be called when headlines fill n")
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestFetcher_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1, 51} {
		if _, err := NewFetcher(&stubProvider{}, nil).Fetch(context.Background(), "go", n); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("n=%d: expected ErrInvalidCount, got %v", n, err)
		}
	}
}
