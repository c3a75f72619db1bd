package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const okBody = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {"source": {"name": "Wire"}, "title": " Rates hold ", "description": "<p>Central banks <b>pause</b> &amp; wait</p>", "url": "https://example.com/a", "publishedAt": "2024-05-01T10:00:00Z"},
    {"source": {"name": "[Removed]"}, "title": "[Removed]", "description": "[Removed]", "url": "https://removed.com", "publishedAt": "1970-01-01T00:00:00Z"},
    {"source": {"name": "Daily"}, "title": "Third", "description": "third story", "url": "https://example.com/c", "publishedAt": "2024-05-02T10:00:00Z"}
  ]
}`

func TestClient_TopHeadlines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top-headlines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("X-Api-Key = %q", got)
		}
		q := r.URL.Query()
		if q.Get("q") != "interest rates" || q.Get("language") != "en" || q.Get("pageSize") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer ts.Close()

	c, err := New(Config{APIKey: "secret", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.TopHeadlines(context.Background(), "interest rates", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles (limit), got %d", len(got))
	}
	if got[0].Title != "Rates hold" || got[0].Description != "Central banks pause & wait" || got[0].SourceName != "Wire" {
		t.Errorf("unexpected first article %+v", got[0])
	}
	if got[1].Title != "[Removed]" || got[1].URL != "https://removed.com" {
		t.Errorf("sentinel values must pass through untouched: %+v", got[1])
	}
}

func TestClient_EverythingSortsByRelevancy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/everything" || r.URL.Query().Get("sortBy") != "relevancy" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer ts.Close()

	c, _ := New(Config{APIKey: "k", BaseURL: ts.URL})
	got, err := c.Everything(context.Background(), "rates", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 articles, got %d", len(got))
	}
}

func TestClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}))
	defer ts.Close()

	c, _ := New(Config{APIKey: "bad", BaseURL: ts.URL})
	_, err := c.TopHeadlines(context.Background(), "x", 5)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "apiKeyInvalid" || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestClient_ErrorStatusInOKResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"slow down"}`))
	}))
	defer ts.Close()

	c, _ := New(Config{APIKey: "k", BaseURL: ts.URL})
	_, err := c.Everything(context.Background(), "x", 5)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "rateLimited" {
		t.Fatalf("expected rateLimited APIError, got %v", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without api key")
	}
}
