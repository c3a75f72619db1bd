package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/FranksOps/newslens/internal/article"
)

// emptyCell is the colour of heatmap cells with no article.
const emptyCell = "rgb(230,230,230)"

// HTMLOptions controls the heatmap page.
type HTMLOptions struct {
	// DetailBase, when set, turns every filled cell into a link to
	// DetailBase + row index.
	DetailBase string
	// ShutdownURL, when set, adds a button that POSTs to it.
	ShutdownURL string
}

type heatCell struct {
	Filled    bool
	Color     string
	Sentiment float64
	Link      string
}

type heatRow struct {
	Index int
	Title string
	Cells []heatCell
}

type heatmapData struct {
	Summary Summary
	Sources []string
	Rows    []heatRow
	Scale   []string
	Empty   string
	Opts    HTMLOptions
}

const heatmapTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Sentiment Heatmap: {{.Summary.Topic}}</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 16px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 140px; }
  .stat-val { font-size: 22px; font-weight: bold; }
  table.heatmap { border-collapse: separate; border-spacing: 2px; margin-top: 20px; }
  .heatmap th { font-size: 11px; font-weight: normal; padding: 4px; }
  .heatmap th.title { text-align: right; font-size: 10px; max-width: 360px; }
  .heatmap td { width: 48px; height: 22px; text-align: center; font-size: 10px; }
  .heatmap td a { display: block; color: #222; text-decoration: none; }
  .scale span { display: inline-block; width: 60px; padding: 4px; font-size: 10px; text-align: center; }
</style>
</head>
<body>
  <h1>Sentiment Heatmap by Article and Source</h1>
  <p><strong>Topic:</strong> {{.Summary.Topic}}</p>

  <div class="stat-card"><div>Articles</div><div class="stat-val">{{.Summary.Count}}</div></div>
  <div class="stat-card"><div>Mean Relevance</div><div class="stat-val">{{printf "%.4f" .Summary.MeanRelevance}}</div></div>
  <div class="stat-card"><div>Mean Sentiment</div><div class="stat-val">{{printf "%.2f" .Summary.MeanSentiment}}</div></div>
  <div class="stat-card"><div>Positive / Neutral / Negative</div><div class="stat-val">{{.Summary.Positive}} / {{.Summary.Neutral}} / {{.Summary.Negative}}</div></div>

  <table class="heatmap">
    <tr><th></th>{{range .Sources}}<th>{{.}}</th>{{end}}</tr>
    {{- range .Rows}}
    <tr><th class="title">{{.Title}}</th>
      {{- range .Cells}}
      {{- if .Filled}}<td style="background: {{.Color | css}}" title="Sentiment: {{printf "%.2f" .Sentiment}}">{{if .Link}}<a href="{{.Link}}">{{printf "%.2f" .Sentiment}}</a>{{else}}{{printf "%.2f" .Sentiment}}{{end}}</td>
      {{- else}}<td style="background: {{$.Empty | css}}"></td>{{end}}
      {{- end}}
    </tr>
    {{- else}}
    <tr><td>No articles.</td></tr>
    {{- end}}
  </table>

  <p class="scale">{{range .Scale}}<span style="background: {{. | css}}"></span>{{end}}<br>
  <span>-1 (Very Negative)</span><span>-0.5</span><span>0 (Neutral)</span><span>0.5</span><span>1 (Very Positive)</span></p>
  {{- if .Opts.ShutdownURL}}
  <form method="post" action="{{.Opts.ShutdownURL}}"><button type="submit">Close dashboard</button></form>
  {{- end}}
</body>
</html>
`

const detailTmpl = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Article Details: {{.Title}}</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  .card { border: 1px solid #ccc; border-radius: 5px; max-width: 760px; }
  .card h2 { margin: 0; padding: 12px 16px; background: #f4f4f4; font-size: 18px; }
  .card .body { padding: 12px 16px; }
  blockquote { color: #555; border-left: 3px solid #ccc; margin-left: 0; padding-left: 12px; }
</style>
</head>
<body>
<div class="card">
  <h2>Article Details: {{.Title}}</h2>
  <div class="body">
    <p>Source: {{.Source}}</p>
    <p>Published: {{.PublishedAt}}</p>
    <p>Relevance Score: {{printf "%.4f" .Relevance}}</p>
    <p>Sentiment Score: {{printf "%.2f" .Sentiment}}</p>
    <p>Sentiment Breakdown:</p>
    <ul>
      <li>Positive: {{.Percentages.Positive}}%</li>
      <li>Neutral: {{.Percentages.Neutral}}%</li>
      <li>Negative: {{.Percentages.Negative}}%</li>
    </ul>
    {{- range .Highlights}}
    <blockquote>{{.}}</blockquote>
    {{- end}}
    <a href="{{.URL}}" target="_blank" rel="noopener">Read Full Article</a>
  </div>
</div>
<p><a href="../">Back to heatmap</a></p>
</body>
</html>
`

var (
	heatmapPage = template.Must(template.New("heatmap").Funcs(template.FuncMap{
		"css": func(s string) template.CSS { return template.CSS(s) },
	}).Parse(heatmapTmpl))
	detailPage = template.Must(template.New("detail").Parse(detailTmpl))
)

// WriteHTML writes the sentiment heatmap: one row per article in rank order,
// one column per source.
func WriteHTML(w io.Writer, topic string, articles []article.Article, opts HTMLOptions) error {
	sources := Sources(articles)
	col := make(map[string]int, len(sources))
	for i, s := range sources {
		col[s] = i
	}

	data := heatmapData{
		Summary: GenerateSummary(topic, articles),
		Sources: sources,
		Empty:   emptyCell,
		Opts:    opts,
	}
	for _, stop := range []float64{-1, -0.5, 0, 0.5, 1} {
		data.Scale = append(data.Scale, SentimentColor(stop))
	}
	for i, a := range articles {
		row := heatRow{Index: i, Title: a.Title, Cells: make([]heatCell, len(sources))}
		cell := heatCell{Filled: true, Color: SentimentColor(a.Sentiment), Sentiment: a.Sentiment}
		if opts.DetailBase != "" {
			cell.Link = fmt.Sprintf("%s%d", opts.DetailBase, i)
		}
		row.Cells[col[a.Source]] = cell
		data.Rows = append(data.Rows, row)
	}

	if err := heatmapPage.Execute(w, data); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// WriteDetailHTML writes the details card of one article.
func WriteDetailHTML(w io.Writer, a article.Article) error {
	if err := detailPage.Execute(w, a); err != nil {
		return fmt.Errorf("render article details: %w", err)
	}
	return nil
}
