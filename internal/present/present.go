// Package present implements the selectable output modes of a run.
package present

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/FranksOps/newslens/internal/dashboard"
	"github.com/FranksOps/newslens/internal/report"
	"github.com/FranksOps/newslens/internal/storage"
	"github.com/FranksOps/newslens/internal/storage/csvbackend"
)

const (
	ModeConsole   = "console"
	ModeJSON      = "json"
	ModeCSV       = "csv"
	ModeDashboard = "dashboard"
)

// Presenter delivers a finished run to the operator.
type Presenter interface {
	Present(ctx context.Context, topic string, articles []article.Article) error
}

// Options carries what the individual modes need.
type Options struct {
	Out         io.Writer
	CSVPath     string
	PlotCommand string
	Dashboard   dashboard.Config
	Logger      *slog.Logger
}

// New returns the presenter for mode.
func New(mode string, opts Options) (Presenter, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch strings.ToLower(mode) {
	case "", ModeConsole:
		return Console{Out: opts.Out}, nil
	case ModeJSON:
		return JSON{Out: opts.Out}, nil
	case ModeCSV:
		return &CSV{Out: opts.Out, Path: opts.CSVPath, PlotCommand: opts.PlotCommand, Logger: opts.Logger}, nil
	case ModeDashboard:
		return &Dashboard{Out: opts.Out, Config: opts.Dashboard}, nil
	}
	return nil, fmt.Errorf("unknown output mode %q (want console, json, csv or dashboard)", mode)
}

// Console prints the text report.
type Console struct {
	Out io.Writer
}

func (c Console) Present(_ context.Context, topic string, articles []article.Article) error {
	return report.WriteText(c.Out, topic, articles)
}

// JSON prints the summary and articles as JSON.
type JSON struct {
	Out io.Writer
}

func (j JSON) Present(_ context.Context, topic string, articles []article.Article) error {
	return report.WriteJSON(j.Out, topic, articles)
}

// CSV prints the text report, writes the CSV export and runs the optional
// plot command on it.
type CSV struct {
	Out         io.Writer
	Path        string
	PlotCommand string
	Logger      *slog.Logger

	// lookPath and run are swapped in tests.
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func (c *CSV) Present(ctx context.Context, topic string, articles []article.Article) error {
	if err := report.WriteText(c.Out, topic, articles); err != nil {
		return err
	}

	path := c.Path
	if path == "" {
		path = "articles_data.csv"
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	b, err := csvbackend.New(path)
	if err != nil {
		return err
	}
	saveErr := storage.SaveAll(ctx, b, storage.NewRecords("", topic, time.Now(), articles))
	if err := errors.Join(saveErr, b.Close()); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	fmt.Fprintf(c.Out, "Data saved to %s\n", path)

	if c.PlotCommand != "" {
		c.plot(ctx, path)
	}
	return nil
}

// plot runs the plot command with the export path appended. A missing or
// failing command only prints instructions for running it by hand.
func (c *CSV) plot(ctx context.Context, csvPath string) {
	fields := strings.Fields(c.PlotCommand)
	manual := strings.Join(append(fields, csvPath), " ")

	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	run := c.run
	if run == nil {
		run = runCommand(c.Out)
	}

	bin, err := lookPath(fields[0])
	if err != nil {
		fmt.Fprintf(c.Out, "Error: %s not found in system PATH.\n", fields[0])
		fmt.Fprintf(c.Out, "You can also try running the plot command manually:\n%s\n", manual)
		return
	}

	args := append(fields[1:len(fields):len(fields)], csvPath)
	if err := run(ctx, bin, args...); err != nil {
		if c.Logger != nil {
			c.Logger.Warn("plot command failed", "cmd", bin, "err", err)
		}
		fmt.Fprintf(c.Out, "Error running plot command: %v\n", err)
		fmt.Fprintf(c.Out, "You can try running the plot command manually:\n%s\n", manual)
		return
	}
	fmt.Fprintln(c.Out, "\nVisualization complete. Check the generated plots.")
}

func runCommand(out io.Writer) func(ctx context.Context, name string, args ...string) error {
	return func(ctx context.Context, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}
}

// Dashboard prints the text report and then serves the heatmap until the
// operator closes it.
type Dashboard struct {
	Out    io.Writer
	Config dashboard.Config
}

func (d *Dashboard) Present(ctx context.Context, topic string, articles []article.Article) error {
	if err := report.WriteText(d.Out, topic, articles); err != nil {
		return err
	}

	srv := dashboard.New(topic, articles, d.Config)
	err := srv.Run(ctx, func(url string) {
		fmt.Fprintln(d.Out, "\nLaunching interactive dashboard...")
		fmt.Fprintf(d.Out, "The dashboard is available at %s\n", url)
		if d.Config.OpenBrowser {
			fmt.Fprintln(d.Out, "The dashboard will open in your default web browser.")
		}
		fmt.Fprintln(d.Out, "Close the dashboard or press Ctrl+C in this terminal to exit the program.")
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "\nDashboard closed. Program exiting.")
	return nil
}
