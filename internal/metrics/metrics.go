package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newslens_source_requests_total",
			Help: "News search calls by call type and outcome",
		},
		[]string{"call", "status"},
	)

	ArticlesOmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newslens_articles_omitted_total",
			Help: "Fetched articles dropped before scoring or for low relevance",
		},
		[]string{"reason"},
	)

	ArticlesAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newslens_articles_accepted_total",
			Help: "Articles that passed the relevance threshold",
		},
	)

	RelevanceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newslens_relevance_score",
			Help:    "Cosine similarity between topic and article embeddings",
			Buckets: []float64{-0.5, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1},
		},
	)

	ExtractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newslens_extraction_total",
			Help: "Full-text downloads by domain and outcome",
		},
		[]string{"domain", "status"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newslens_extraction_duration_seconds",
			Help:    "Duration of full-text downloads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)
)

// RecordSource counts one search call. A nil err is recorded as "ok".
func RecordSource(call string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SourceRequestsTotal.WithLabelValues(call, status).Inc()
}

// RecordExtraction counts one full-text download. status is an HTTP code,
// or a short failure label such as "error" or "challenged".
func RecordExtraction(domain string, status string, d time.Duration) {
	ExtractionTotal.WithLabelValues(domain, status).Inc()
	ExtractionDuration.WithLabelValues(domain).Observe(d.Seconds())
}

// StatusLabel renders an HTTP status code as a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", srv.Addr, "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
