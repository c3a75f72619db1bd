package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FranksOps/newslens/internal/dashboard"
	"github.com/FranksOps/newslens/internal/embed"
	"github.com/FranksOps/newslens/internal/fingerprint"
	"github.com/FranksOps/newslens/internal/metrics"
	"github.com/FranksOps/newslens/internal/pipeline"
	"github.com/FranksOps/newslens/internal/present"
	"github.com/FranksOps/newslens/internal/scraper"
	"github.com/FranksOps/newslens/internal/sentiment"
	"github.com/FranksOps/newslens/internal/source"
	"github.com/FranksOps/newslens/internal/source/newsapi"
	"github.com/FranksOps/newslens/internal/source/rss"
	"github.com/FranksOps/newslens/internal/storage"
	"github.com/FranksOps/newslens/pkg/proxy"
	"github.com/FranksOps/newslens/pkg/ratelimit"
	"github.com/FranksOps/newslens/pkg/useragent"
)

const (
	robotsAgent = "newslens"
	limitJitter = 0.2
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "analyze [topic]",
		Short: "Fetch, score and report articles about a topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			countSet := cmd.Flags().Changed("count")
			if countSet && (count < source.MinCount || count > source.MaxCount) {
				return fmt.Errorf("--count must be between %d and %d", source.MinCount, source.MaxCount)
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if topic == "" {
				t, err := p.askTopic()
				if err != nil {
					return err
				}
				topic = t
				if !countSet {
					n, err := p.askCount(a.cfg.Fetch.DefaultCount)
					if err != nil {
						return err
					}
					count, countSet = n, true
				}
			}
			if !countSet {
				count = a.cfg.Fetch.DefaultCount
			}
			return runAnalyze(cmd.Context(), a.cfg, a.logger, cmd.OutOrStdout(), topic, count)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&count, "count", "n", 0, "number of articles to fetch (1-50)")
	f.StringP("output", "o", "console", "output mode: console, json, csv or dashboard")
	f.String("provider", "newsapi", "news provider: newsapi or rss")
	f.Float64("threshold", pipeline.DefaultThreshold, "minimum relevance score to keep an article (0 means the default 0.2)")
	f.Int("highlights", 3, "topic sentences kept per article")
	f.String("embed-endpoint", "http://localhost:8003", "OpenAI-compatible embeddings server")
	f.Bool("no-extract", false, "skip full-text extraction")
	f.Bool("respect-robots", false, "honour robots.txt when extracting")
	f.String("fingerprint", "chrome", "TLS fingerprint: chrome, firefox, safari, go or random")
	f.String("proxy-file", "", "file with one proxy URL per line")
	f.String("csv-path", "articles_data.csv", "CSV export path for --output csv")
	f.String("plot-command", "", "command run on the CSV export")
	f.String("addr", "127.0.0.1:8050", "dashboard listen address")
	f.Bool("no-browser", false, "do not open a browser for the dashboard")
	f.Int("metrics-port", 0, "serve prometheus metrics on this port (0 disables)")
	bind(a.v, f, map[string]string{
		"output.mode":                "output",
		"news.provider":              "provider",
		"filter.relevance_threshold": "threshold",
		"filter.highlights":          "highlights",
		"embed.endpoint":             "embed-endpoint",
		"extract.respect_robots":     "respect-robots",
		"extract.fingerprint":        "fingerprint",
		"extract.proxy_file":         "proxy-file",
		"output.csv_path":            "csv-path",
		"output.plot_command":        "plot-command",
		"dashboard.addr":             "addr",
		"metrics.port":               "metrics-port",
	})
	// Negated switches are applied after loading.
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if v, _ := cmd.Flags().GetBool("no-extract"); v {
			a.cfg.Extract.Enabled = false
		}
		if v, _ := cmd.Flags().GetBool("no-browser"); v {
			a.cfg.Dashboard.OpenBrowser = false
		}
		return nil
	}
	return cmd
}

func runAnalyze(ctx context.Context, cfg Config, logger *slog.Logger, out io.Writer, topic string, n int) error {
	pres, err := present.New(cfg.Output.Mode, present.Options{
		Out:         out,
		CSVPath:     cfg.Output.CSVPath,
		PlotCommand: cfg.Output.PlotCommand,
		Dashboard: dashboard.Config{
			Addr:        cfg.Dashboard.Addr,
			OpenBrowser: cfg.Dashboard.OpenBrowser,
			Logger:      logger,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}
	src := source.NewFetcher(provider, logger)
	src.HeadlineRatio = cfg.Fetch.HeadlineRatio
	src.HeadlineCap = cfg.Fetch.HeadlineCap

	embedder, err := embed.New(embed.Config{
		Endpoint: cfg.Embed.Endpoint,
		Model:    cfg.Embed.Model,
		APIKey:   cfg.Embed.APIKey,
		Timeout:  cfg.Embed.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Source:     src,
		Embedder:   embedder,
		Sentiment:  sentiment.NewVADER(),
		Threshold:  cfg.Filter.RelevanceThreshold,
		Highlights: cfg.Filter.Highlights,
		Progress:   out,
		Logger:     logger,
	}
	if cfg.Extract.Enabled {
		ext, err := newExtractor(cfg, logger)
		if err != nil {
			return err
		}
		p.Extractor = ext
	}

	if cfg.Metrics.Port > 0 {
		srv := metrics.Start(cfg.Metrics.Port, logger)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	res, err := p.Run(ctx, topic, n)
	switch {
	case errors.Is(err, pipeline.ErrNothingFetched):
		fmt.Fprintln(out, "No articles were fetched. Please check your API key and internet connection.")
		fmt.Fprintln(out, "No articles to display. Exiting.")
		return nil
	case errors.Is(err, pipeline.ErrNoRelevant):
		if res != nil && res.Omitted > 0 {
			logger.Debug("omitted articles", "reasons", res.OmitReasons)
		}
		fmt.Fprintln(out, "No valid articles could be processed. Try a different search term or check the API response.")
		fmt.Fprintln(out, "No articles to display. Exiting.")
		return nil
	case err != nil:
		fmt.Fprintf(out, "Error processing articles: %v\n", err)
		return &silentError{err: err}
	}

	if err := saveRun(ctx, cfg, logger, topic, res); err != nil {
		// History is best effort; the report still goes out.
		logger.Error("saving run failed", "backend", cfg.Store.Backend, "err", err)
	}
	return pres.Present(ctx, topic, res.Articles)
}

func newProvider(cfg Config, logger *slog.Logger) (source.Provider, error) {
	switch cfg.News.Provider {
	case "rss":
		return rss.New(rss.Config{
			HeadlinesURL: cfg.RSS.HeadlinesURL,
			SearchURL:    cfg.RSS.SearchURL,
			Timeout:      cfg.News.Timeout,
			Logger:       logger,
		})
	default:
		if cfg.News.APIKey == "" {
			return nil, errors.New("no NewsAPI key configured: set NEWS_API_KEY (or news.api_key), or use --provider rss")
		}
		return newsapi.New(newsapi.Config{
			APIKey:   cfg.News.APIKey,
			BaseURL:  cfg.News.BaseURL,
			Language: cfg.News.Language,
			Timeout:  cfg.News.Timeout,
			Logger:   logger,
		})
	}
}

func newExtractor(cfg Config, logger *slog.Logger) (*scraper.Extractor, error) {
	profile, err := fingerprint.ParseProfile(cfg.Extract.Fingerprint)
	if err != nil {
		return nil, err
	}

	fc := scraper.FetchConfig{
		Timeout:     cfg.Extract.Timeout,
		UAPool:      useragent.NewRandomPool(nil),
		Fingerprint: profile,
		Limiter:     ratelimit.NewLimiter(cfg.Extract.RequestsPerSecond, limitJitter),
	}
	if cfg.Extract.ProxyFile != "" {
		pool := proxy.NewPool(proxy.Config{})
		if err := pool.LoadFile(cfg.Extract.ProxyFile); err != nil {
			return nil, fmt.Errorf("load proxies: %w", err)
		}
		logger.Info("proxy pool loaded", "proxies", pool.Len())
		fc.ProxyPool = pool
	}

	fetcher, err := scraper.NewFetcher(fc)
	if err != nil {
		return nil, err
	}
	ec := scraper.ExtractorConfig{
		Fetcher:  fetcher,
		Agent:    robotsAgent,
		MaxChars: cfg.Extract.MaxChars,
		Logger:   logger,
	}
	if cfg.Extract.RespectRobots {
		ec.Robots = scraper.NewRobotsAuditor(fetcher, logger)
	}
	return scraper.NewExtractor(ec), nil
}

func saveRun(ctx context.Context, cfg Config, logger *slog.Logger, topic string, res *pipeline.Result) error {
	if cfg.Store.Backend == "none" || cfg.Store.Backend == "" {
		return nil
	}
	b, err := openBackend(ctx, cfg.Store.Backend, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer b.Close()

	runID := uuid.NewString()
	recs := storage.NewRecords(runID, topic, time.Now(), res.Articles)
	if err := storage.SaveAll(ctx, b, recs); err != nil {
		return err
	}
	logger.Info("run saved", "run_id", runID, "backend", cfg.Store.Backend, "records", len(recs))
	return nil
}
