package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/canwork/internal/canwork"
	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/server"
	"github.com/standardbeagle/canwork/internal/snapshot"
)

const defaultWatchDebounce = snapshot.DefaultDebounce

// checkCommand prints one report per argument. The answer itself is never an error.
func checkCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(server.UsageText, 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	check, err := newCheckFunc(cfg, c.String("server"))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	reports := make([]*canwork.Report, 0, c.NArg())
	for _, query := range c.Args().Slice() {
		report, err := check(ctx, query)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	return writeReports(c.App.Writer, reports, c.Bool("json"))
}

type checkFunc func(ctx context.Context, query string) (*canwork.Report, error)

// newCheckFunc answers locally from the snapshot, or through a running server when serverURL is set
func newCheckFunc(cfg *config.Config, serverURL string) (checkFunc, error) {
	if serverURL == "" {
		checker := canwork.NewFromConfig(cfg)
		return func(ctx context.Context, query string) (*canwork.Report, error) {
			return checker.Check(ctx, query), nil
		}, nil
	}

	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}
	client := server.NewClient(serverURL, cfg.Bot.Token)
	return client.Check, nil
}

func writeReports(w io.Writer, reports []*canwork.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}

	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, report.Text())
	}
	return nil
}

// watchCommand prints a report now and again after every snapshot change
func watchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Usage: canwork watch <file>", 2)
	}
	query := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	checker := canwork.NewFromConfig(cfg)

	watcher, err := snapshot.NewWatcher(cfg.Snapshot.File, c.Duration("debounce"))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	w := c.App.Writer
	report := func() {
		fmt.Fprintf(w, "[%s]\n%s\n\n", time.Now().Format(time.TimeOnly), checker.Check(ctx, query).Text())
	}

	report()
	return watcher.Run(ctx, report)
}
