package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FranksOps/newslens/internal/fingerprint"
	"github.com/FranksOps/newslens/pkg/proxy"
	"github.com/FranksOps/newslens/pkg/useragent"
)

func TestFetcher_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "TestBrowser/1.0" {
			t.Errorf("expected pooled User-Agent, got %q", got)
		}
		w.Header().Set("X-Test", "true")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		UAPool:      useragent.NewPool([]string{"TestBrowser/1.0"}),
	})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	page, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", page.StatusCode)
	}
	if string(page.Body) != "ok" {
		t.Errorf("expected body 'ok', got %s", string(page.Body))
	}
	if page.Header.Get("X-Test") != "true" {
		t.Errorf("expected X-Test header 'true', got %v", page.Header["X-Test"])
	}
	if page.Duration == 0 {
		t.Errorf("expected non-zero duration")
	}
	if page.Challenge != "" {
		t.Errorf("expected no challenge, got %s", page.Challenge)
	}
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{
		Timeout:     10 * time.Millisecond,
		Fingerprint: fingerprint.ProfileGo,
	})

	if _, err := fetcher.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetcher_RejectsNonHTTP(t *testing.T) {
	fetcher, _ := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo})

	for _, raw := range []string{"ftp://example.com/x", "not a url", ""} {
		if _, err := fetcher.Fetch(context.Background(), raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFetcher_DetectsChallenge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html><title>Just a moment...</title></html>"))
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo})

	page, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Challenge != "Cloudflare" {
		t.Errorf("expected Cloudflare challenge, got %q", page.Challenge)
	}
}

func TestFetcher_Proxy(t *testing.T) {
	// Plain HTTP targets are sent to the proxy as absolute-form requests, so a
	// regular server standing in for the proxy answers them directly.
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer proxyServer.Close()

	pPool := proxy.NewPool(proxy.Config{MaxFailures: 1, Cooldown: time.Second})
	if err := pPool.Add(proxyServer.URL); err != nil {
		t.Fatalf("failed to add proxy: %v", err)
	}

	fetcher, _ := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		ProxyPool:   pPool,
	})

	targetServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer targetServer.Close()

	page, err := fetcher.Fetch(context.Background(), targetServer.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusTeapot {
		t.Errorf("expected 418 Teapot from proxy, got %d", page.StatusCode)
	}
}
