// Package dashboard serves the sentiment heatmap of one run on a local HTTP
// server until the operator closes it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/report"
)

const (
	DefaultAddr         = "127.0.0.1:8050"
	DefaultBrowserDelay = time.Second
)

type Config struct {
	Addr         string
	OpenBrowser  bool
	BrowserDelay time.Duration
	// Opener launches a browser on url. nil uses the platform default.
	Opener func(url string) error
	Logger *slog.Logger
}

// Server holds a finished run. Handlers only read the article slice.
type Server struct {
	topic    string
	articles []article.Article
	cfg      Config
	router   chi.Router

	stop     chan struct{}
	stopOnce sync.Once
}

func New(topic string, articles []article.Article, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.BrowserDelay == 0 {
		cfg.BrowserDelay = DefaultBrowserDelay
	}
	if cfg.Opener == nil {
		cfg.Opener = OpenBrowser
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		topic:    topic,
		articles: articles,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", s.handleHeatmap)
	r.Get("/articles/{index}", s.handleArticle)
	r.Get("/api/articles", s.handleAPI)
	r.Post("/shutdown", s.handleShutdown)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Done is closed once /shutdown has been requested.
func (s *Server) Done() <-chan struct{} { return s.stop }

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := report.WriteHTML(w, s.topic, s.articles, report.HTMLOptions{
		DetailBase:  "/articles/",
		ShutdownURL: "/shutdown",
	})
	if err != nil {
		s.cfg.Logger.Error("render heatmap", "err", err)
	}
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(s.articles) {
		http.Error(w, "No article details available for this cell.", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteDetailHTML(w, s.articles[i]); err != nil {
		s.cfg.Logger.Error("render article", "index", i, "err", err)
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, s.topic, s.articles); err != nil {
		s.cfg.Logger.Error("encode articles", "err", err)
	}
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Server shutting down...\n"))
	s.stopOnce.Do(func() { close(s.stop) })
}

// Run serves until ctx is cancelled or /shutdown is called. ready, when
// non-nil, receives the base URL once the listener is bound.
func (s *Server) Run(ctx context.Context, ready func(url string)) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	baseURL := "http://" + ln.Addr().String() + "/"
	if ready != nil {
		ready(baseURL)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.cfg.Logger.Info("dashboard listening", "url", baseURL)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stop:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if s.cfg.OpenBrowser {
		g.Go(func() error {
			t := time.NewTimer(s.cfg.BrowserDelay)
			defer t.Stop()
			select {
			case <-gctx.Done():
				return nil
			case <-s.stop:
				return nil
			case <-t.C:
			}
			if err := s.cfg.Opener(baseURL); err != nil {
				// Not fatal: the URL is logged and printed.
				s.cfg.Logger.Warn("could not open browser", "url", baseURL, "err", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// OpenBrowser opens url in the platform's default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
