// Package report renders ranked articles as console text, JSON and HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"text/template"

	"github.com/FranksOps/newslens/internal/article"
)

// Summary aggregates one run's ranked articles.
type Summary struct {
	Topic         string         `json:"topic"`
	Count         int            `json:"count"`
	MeanRelevance float64        `json:"mean_relevance"`
	MeanSentiment float64        `json:"mean_sentiment"`
	Positive      int            `json:"positive_articles"`
	Neutral       int            `json:"neutral_articles"`
	Negative      int            `json:"negative_articles"`
	BySource      map[string]int `json:"by_source"`
}

// GenerateSummary computes a Summary. An article counts as positive or
// negative when its breakdown has a non-zero share on that side.
func GenerateSummary(topic string, articles []article.Article) Summary {
	s := Summary{Topic: topic, BySource: make(map[string]int)}
	if len(articles) == 0 {
		return s
	}

	var rel, sent float64
	for _, a := range articles {
		s.Count++
		rel += a.Relevance
		sent += a.Sentiment
		s.BySource[a.Source]++
		switch {
		case a.Percentages.Positive > 0:
			s.Positive++
		case a.Percentages.Negative > 0:
			s.Negative++
		default:
			s.Neutral++
		}
	}
	s.MeanRelevance = rel / float64(s.Count)
	s.MeanSentiment = sent / float64(s.Count)
	return s
}

// Sources returns the distinct sources of articles, sorted.
func Sources(articles []article.Article) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range articles {
		if !seen[a.Source] {
			seen[a.Source] = true
			out = append(out, a.Source)
		}
	}
	sort.Strings(out)
	return out
}

type jsonReport struct {
	Summary  Summary           `json:"summary"`
	Articles []article.Article `json:"articles"`
}

// WriteJSON writes the summary and the ranked articles as indented JSON.
func WriteJSON(w io.Writer, topic string, articles []article.Article) error {
	if articles == nil {
		articles = []article.Article{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonReport{Summary: GenerateSummary(topic, articles), Articles: articles}); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

const textTmpl = `Analyzed articles for topic: '{{.Topic}}'
Number of relevant articles found: {{len .Articles}}

Articles sorted by relevance score, then sentiment strength:
{{range .Articles}}
Title: {{.Title}}
Source: {{.Source}}
Published: {{.PublishedAt}}
Relevance Score: {{printf "%.4f" .Relevance}}
Sentiment Score: {{printf "%.2f" .Sentiment}}
Sentiment Breakdown:
  Positive: {{.Percentages.Positive}}%
  Neutral: {{.Percentages.Neutral}}%
  Negative: {{.Percentages.Negative}}%
URL: {{.URL}}
{{end}}`

var textReport = template.Must(template.New("textReport").Parse(textTmpl))

// WriteText writes the console report. The output depends only on its
// inputs.
func WriteText(w io.Writer, topic string, articles []article.Article) error {
	data := struct {
		Topic    string
		Articles []article.Article
	}{topic, articles}
	if err := textReport.Execute(w, data); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}
	return nil
}

// colorStops is the sentiment colour scale from -1 (dark red) to 1 (dark
// green).
var colorStops = [5][3]float64{
	{178, 24, 43},
	{239, 138, 98},
	{253, 219, 199},
	{161, 217, 155},
	{49, 163, 84},
}

// SentimentColor maps a compound score in [-1, 1] to a CSS rgb() colour by
// interpolating the five-stop scale.
func SentimentColor(score float64) string {
	if math.IsNaN(score) {
		score = 0
	}
	pos := (math.Max(-1, math.Min(1, score)) + 1) / 2 * float64(len(colorStops)-1)
	i := int(math.Floor(pos))
	if i >= len(colorStops)-1 {
		i = len(colorStops) - 2
	}
	f := pos - float64(i)
	lo, hi := colorStops[i], colorStops[i+1]
	var c [3]int
	for k := range c {
		c[k] = int(math.Round(lo[k] + (hi[k]-lo[k])*f))
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])
}
