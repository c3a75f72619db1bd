package embed

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got < -1 || got > 1 {
				t.Errorf("similarity %v out of range", got)
			}
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestClient_Embed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != DefaultModel {
			t.Errorf("expected default model, got %q", req.Model)
		}
		// Answer out of order to check reassembly by index.
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}],"model":"m"}`))
	}))
	defer ts.Close()

	c, err := New(Config{Endpoint: ts.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("embeddings not reassembled by index: %v", vecs)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, _ := New(Config{Endpoint: ts.URL})
	_, err := c.Embed(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "HTTP 503") {
		t.Fatalf("expected HTTP 503 error, got %v", err)
	}
}

func TestClient_MissingEmbedding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	c, _ := New(Config{Endpoint: ts.URL})
	if _, err := c.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestClient_SharedHTTPStack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "newslens" {
			t.Errorf("expected newslens user agent, got %q", ua)
		}
		// A response far larger than the cap must not be buffered whole.
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}],"pad":"` + strings.Repeat("x", 4096) + `"}`))
	}))
	defer ts.Close()

	c, _ := New(Config{Endpoint: ts.URL, MaxBodyBytes: 64})
	if _, err := c.Embed(context.Background(), "text"); err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("expected truncated body to fail decoding, got %v", err)
	}

	c, _ = New(Config{Endpoint: ts.URL})
	vec, err := c.Embed(context.Background(), "text")
	if err != nil || len(vec) != 2 {
		t.Fatalf("Embed() = %v, %v", vec, err)
	}
}
