package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/newslens/internal/metrics"
)

var (
	ErrChallenged = errors.New("page served a bot challenge")
	ErrDisallowed = errors.New("disallowed by robots.txt")
	ErrNotHTML    = errors.New("response is not html")
	ErrNoContent  = errors.New("no article text found")
)

// DefaultMaxChars caps extracted text when ExtractorConfig.MaxChars is 0.
const DefaultMaxChars = 20000

// minParagraph is the shortest paragraph, in characters, kept as body text.
const minParagraph = 40

// bodySelectors are tried in order; the first one that yields text wins.
var bodySelectors = []string{
	"article p",
	"[itemprop='articleBody'] p",
	".article-body p",
	".story-body p",
	"main p",
	"p",
}

// boilerplate is removed before any selector runs.
const boilerplate = "script, style, noscript, nav, header, footer, aside, form, iframe, svg"

// ExtractorConfig configures an Extractor.
type ExtractorConfig struct {
	Fetcher *Fetcher
	// Robots, when set, refuses URLs disallowed for Agent.
	Robots   *RobotsAuditor
	Agent    string
	MaxChars int
	Logger   *slog.Logger
}

// Extractor downloads an article page and returns its readable body text.
type Extractor struct {
	fetcher  *Fetcher
	robots   *RobotsAuditor
	agent    string
	maxChars int
	logger   *slog.Logger
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.Agent == "" {
		cfg.Agent = "newslens"
	}
	return &Extractor{
		fetcher:  cfg.Fetcher,
		robots:   cfg.Robots,
		agent:    cfg.Agent,
		maxChars: cfg.MaxChars,
		logger:   cfg.Logger,
	}
}

// Extract fetches targetURL and returns its body text.
func (e *Extractor) Extract(ctx context.Context, targetURL string) (string, error) {
	domain := targetURL
	if u, err := url.Parse(targetURL); err == nil && u.Hostname() != "" {
		domain = u.Hostname()
	}

	if e.robots != nil {
		allowed, err := e.robots.IsAllowed(ctx, targetURL, e.agent)
		if err != nil {
			return "", err
		}
		if !allowed {
			metrics.RecordExtraction(domain, "disallowed", 0)
			return "", ErrDisallowed
		}
	}

	start := time.Now()
	page, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		metrics.RecordExtraction(domain, "error", time.Since(start))
		return "", fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	if page.Challenge != "" {
		metrics.RecordExtraction(domain, "challenged", page.Duration)
		e.logger.Debug("bot challenge", "url", targetURL, "vendor", page.Challenge)
		return "", fmt.Errorf("%s: %w (%s)", targetURL, ErrChallenged, page.Challenge)
	}
	metrics.RecordExtraction(domain, metrics.StatusLabel(page.StatusCode), page.Duration)

	if page.StatusCode < 200 || page.StatusCode > 299 {
		return "", fmt.Errorf("%s: HTTP %d", targetURL, page.StatusCode)
	}
	if ct := page.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || (mediaType != "text/html" && mediaType != "application/xhtml+xml") {
			return "", fmt.Errorf("%s: %w (%s)", targetURL, ErrNotHTML, ct)
		}
	}

	text, err := ExtractText(page.Body, e.maxChars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", targetURL, err)
	}
	return text, nil
}

// ExtractText pulls paragraph text out of an HTML document. Paragraphs are
// joined with blank lines and the result is capped to maxChars runes.
func ExtractText(body []byte, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(boilerplate).Remove()

	var paragraphs []string
	for _, sel := range bodySelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if len([]rune(text)) >= minParagraph {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}
	if len(paragraphs) == 0 {
		return "", ErrNoContent
	}

	text := strings.Join(paragraphs, "\n\n")
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = strings.TrimSpace(string(r[:maxChars]))
		}
	}
	return text, nil
}
