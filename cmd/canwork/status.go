package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/canwork/internal/canwork"
	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/snapshot"
	"github.com/standardbeagle/canwork/internal/version"
)

// StatusReport describes the snapshot for operators
type StatusReport struct {
	Version      string    `json:"version"`
	Config       string    `json:"config"`
	SnapshotPath string    `json:"snapshot_path"`
	Exists       bool      `json:"exists"`
	Status       string    `json:"status"`
	Entries      int       `json:"entries"`
	Skipped      int       `json:"skipped"`
	Fingerprint  string    `json:"fingerprint,omitempty"`
	ModTime      time.Time `json:"mod_time"`
	TrimPrefixes []string  `json:"trim_prefixes"`
	Error        string    `json:"error,omitempty"`
}

func newStatusReport(cfg *config.Config, res snapshot.Result) StatusReport {
	report := StatusReport{
		Version:      version.FullInfo(),
		Config:       cfg.Source,
		SnapshotPath: res.Path,
		Exists:       res.Available(),
		Status:       res.Status.String(),
		Entries:      len(res.Snapshot),
		Skipped:      res.Skipped,
		ModTime:      res.ModTime,
		TrimPrefixes: cfg.Snapshot.TrimPrefixes,
	}
	if res.Fingerprint != 0 {
		report.Fingerprint = fmt.Sprintf("%016x", res.Fingerprint)
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	return report
}

// statusCommand shows where the snapshot is and what it holds
func statusCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	res := canwork.NewFromConfig(cfg).Status(c.Context)
	report := newStatusReport(cfg, res)

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	outputStatusHuman(c.App.Writer, report)
	return nil
}

func outputStatusHuman(w io.Writer, r StatusReport) {
	fmt.Fprintf(w, "Version:       %s\n", r.Version)
	fmt.Fprintf(w, "Config:        %s\n", r.Config)
	fmt.Fprintf(w, "Snapshot:      %s\n", r.SnapshotPath)
	fmt.Fprintf(w, "Status:        %s\n", r.Status)
	if !r.Exists {
		fmt.Fprintln(w, "               (run the opened-files watcher at least once)")
		return
	}
	fmt.Fprintf(w, "Entries:       %d", r.Entries)
	if r.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", r.Skipped)
	}
	fmt.Fprintln(w)
	if r.Fingerprint != "" {
		fmt.Fprintf(w, "Fingerprint:   %s\n", r.Fingerprint)
	}
	if !r.ModTime.IsZero() {
		fmt.Fprintf(w, "Modified:      %s (%s ago)\n", r.ModTime.Format(time.RFC3339), time.Since(r.ModTime).Round(time.Second))
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error:         %s\n", r.Error)
	}
}
