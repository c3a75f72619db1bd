package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/newslens/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		f     storage.Filter
		since string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List articles from previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				f.Since = &t
			}

			b, err := openBackend(cmd.Context(), a.cfg.Store.Backend, a.cfg.Store.DSN)
			if err != nil {
				return err
			}
			defer b.Close()

			recs, err := b.Query(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}
			return writeHistory(cmd.OutOrStdout(), recs)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Topic, "topic", "", "only runs for this topic (case-insensitive)")
	fl.StringVar(&f.RunID, "run", "", "only this run id")
	fl.StringVar(&since, "since", "", "only records newer than a duration (24h) or RFC3339 time")
	fl.Float64Var(&f.MinRelevance, "min-relevance", 0, "minimum relevance score")
	fl.IntVar(&f.Limit, "limit", 50, "maximum records (0 for all)")
	fl.IntVar(&f.Offset, "offset", 0, "records to skip")
	return cmd
}

func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--since: want a duration or RFC3339 time, got %q", s)
	}
	return t, nil
}

func writeHistory(w io.Writer, recs []*storage.Record) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No stored articles match.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ANALYZED\tRUN\tTOPIC\tRELEVANCE\tSENTIMENT\tSOURCE\tTITLE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%s\t%s\n",
			r.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			shortID(r.RunID),
			r.Topic,
			r.Article.Relevance,
			r.Article.Sentiment,
			r.Article.Source,
			r.Article.Title,
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
