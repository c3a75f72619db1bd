package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/FranksOps/newslens/internal/embed"
	"github.com/FranksOps/newslens/internal/pipeline"
	"github.com/FranksOps/newslens/internal/source"
	"github.com/FranksOps/newslens/internal/source/newsapi"
	"github.com/FranksOps/newslens/internal/source/rss"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	News struct {
		Provider string
		APIKey   string
		BaseURL  string
		Language string
		Timeout  time.Duration
	}
	RSS struct {
		HeadlinesURL string
		SearchURL    string
	}
	Fetch struct {
		DefaultCount  int
		HeadlineRatio float64
		HeadlineCap   int
	}
	Filter struct {
		RelevanceThreshold float64
		Highlights         int
	}
	Embed struct {
		Endpoint string
		Model    string
		APIKey   string
		Timeout  time.Duration
	}
	Extract struct {
		Enabled           bool
		Timeout           time.Duration
		Fingerprint       string
		RespectRobots     bool
		RequestsPerSecond float64
		ProxyFile         string
		MaxChars          int
	}
	Output struct {
		Mode        string
		CSVPath     string
		PlotCommand string
	}
	Dashboard struct {
		Addr        string
		OpenBrowser bool
	}
	Store struct {
		Backend string
		DSN     string
	}
	Metrics struct {
		Port int
	}
	Log struct {
		Level  string
		Format string
	}
}

var defaults = map[string]any{
	"news.provider":               "newsapi",
	"news.base_url":               newsapi.DefaultBaseURL,
	"news.language":               "en",
	"news.timeout":                "15s",
	"rss.headlines_url":           rss.DefaultHeadlinesURL,
	"rss.search_url":              rss.DefaultSearchURL,
	"fetch.default_count":         20,
	"fetch.headline_ratio":        source.DefaultHeadlineRatio,
	"fetch.headline_cap":          source.DefaultHeadlineCap,
	"filter.relevance_threshold":  pipeline.DefaultThreshold,
	"filter.highlights":           3,
	"embed.endpoint":              "http://localhost:8003",
	"embed.model":                 embed.DefaultModel,
	"embed.timeout":               "30s",
	"extract.enabled":             true,
	"extract.timeout":             "15s",
	"extract.fingerprint":         "chrome",
	"extract.respect_robots":      false,
	"extract.requests_per_second": 2.0,
	"extract.max_chars":           20000,
	"output.mode":                 "console",
	"output.csv_path":             "articles_data.csv",
	"dashboard.addr":              "127.0.0.1:8050",
	"dashboard.open_browser":      true,
	"store.backend":               "none",
	"metrics.port":                0,
	"log.level":                   "info",
	"log.format":                  "text",
}

// newViper returns a viper instance with defaults and environment binding.
// Environment keys are NEWSLENS_ plus the upper-cased key with dots as
// underscores; the NewsAPI key is also read from NEWS_API_KEY.
func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("NEWSLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("news.api_key", "NEWSLENS_NEWS_API_KEY", "NEWS_API_KEY")
	_ = v.BindEnv("embed.api_key", "NEWSLENS_EMBED_API_KEY")
	_ = v.BindEnv("extract.proxy_file", "NEWSLENS_EXTRACT_PROXY_FILE")
	_ = v.BindEnv("output.plot_command", "NEWSLENS_OUTPUT_PLOT_COMMAND")
	_ = v.BindEnv("store.dsn", "NEWSLENS_STORE_DSN")
	return v
}

// readConfigFile merges path into v when path is set.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	var c Config
	c.News.Provider = strings.ToLower(v.GetString("news.provider"))
	c.News.APIKey = v.GetString("news.api_key")
	c.News.BaseURL = v.GetString("news.base_url")
	c.News.Language = v.GetString("news.language")
	c.News.Timeout = v.GetDuration("news.timeout")
	c.RSS.HeadlinesURL = v.GetString("rss.headlines_url")
	c.RSS.SearchURL = v.GetString("rss.search_url")
	c.Fetch.DefaultCount = v.GetInt("fetch.default_count")
	c.Fetch.HeadlineRatio = v.GetFloat64("fetch.headline_ratio")
	c.Fetch.HeadlineCap = v.GetInt("fetch.headline_cap")
	c.Filter.RelevanceThreshold = v.GetFloat64("filter.relevance_threshold")
	c.Filter.Highlights = v.GetInt("filter.highlights")
	c.Embed.Endpoint = v.GetString("embed.endpoint")
	c.Embed.Model = v.GetString("embed.model")
	c.Embed.APIKey = v.GetString("embed.api_key")
	c.Embed.Timeout = v.GetDuration("embed.timeout")
	c.Extract.Enabled = v.GetBool("extract.enabled")
	c.Extract.Timeout = v.GetDuration("extract.timeout")
	c.Extract.Fingerprint = v.GetString("extract.fingerprint")
	c.Extract.RespectRobots = v.GetBool("extract.respect_robots")
	c.Extract.RequestsPerSecond = v.GetFloat64("extract.requests_per_second")
	c.Extract.ProxyFile = v.GetString("extract.proxy_file")
	c.Extract.MaxChars = v.GetInt("extract.max_chars")
	c.Output.Mode = strings.ToLower(v.GetString("output.mode"))
	c.Output.CSVPath = v.GetString("output.csv_path")
	c.Output.PlotCommand = v.GetString("output.plot_command")
	c.Dashboard.Addr = v.GetString("dashboard.addr")
	c.Dashboard.OpenBrowser = v.GetBool("dashboard.open_browser")
	c.Store.Backend = strings.ToLower(v.GetString("store.backend"))
	c.Store.DSN = v.GetString("store.dsn")
	c.Metrics.Port = v.GetInt("metrics.port")
	c.Log.Level = v.GetString("log.level")
	c.Log.Format = v.GetString("log.format")
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.News.Provider {
	case "newsapi", "rss":
	default:
		return fmt.Errorf("news.provider must be newsapi or rss, got %q", c.News.Provider)
	}
	if c.Fetch.DefaultCount < source.MinCount || c.Fetch.DefaultCount > source.MaxCount {
		return fmt.Errorf("fetch.default_count must be between %d and %d", source.MinCount, source.MaxCount)
	}
	if c.Fetch.HeadlineRatio < 0 || c.Fetch.HeadlineRatio > 1 {
		return fmt.Errorf("fetch.headline_ratio must be within [0, 1], got %v", c.Fetch.HeadlineRatio)
	}
	if c.Filter.RelevanceThreshold < -1 || c.Filter.RelevanceThreshold > 1 {
		return fmt.Errorf("filter.relevance_threshold must be within [-1, 1], got %v", c.Filter.RelevanceThreshold)
	}
	switch c.Store.Backend {
	case "none", "json", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.backend must be none, json, sqlite or postgres, got %q", c.Store.Backend)
	}
	return nil
}
