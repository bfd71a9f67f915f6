// Package canwork answers "can I work on this file?" by loading a fresh
// snapshot for every question and matching the reference against it.
package canwork

import (
	"context"

	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/match"
	"github.com/standardbeagle/canwork/internal/snapshot"
	"github.com/standardbeagle/canwork/pkg/pathutil"
)

// Loader provides a freshly read snapshot on every call
type Loader interface {
	Load(ctx context.Context) snapshot.Result
}

// Checker combines a snapshot source with a match engine.
// It keeps no per-query state; concurrent Check calls are independent.
type Checker struct {
	loader Loader
	engine *match.Engine
}

// NewChecker creates a checker over loader using engine
func NewChecker(loader Loader, engine *match.Engine) *Checker {
	return &Checker{loader: loader, engine: engine}
}

// NewFromConfig wires the snapshot store and match engine described by cfg
func NewFromConfig(cfg *config.Config) *Checker {
	return NewChecker(snapshot.NewStore(cfg.Snapshot.File), match.NewEngine(cfg.Snapshot, cfg.Match))
}

// Check reports who holds files matching query.
// It always produces a definite answer; data-layer failures degrade to "no match".
func (c *Checker) Check(ctx context.Context, query string) *Report {
	display := pathutil.DisplayQuery(query)
	debug.LogMatch("check '%s'\n", display)

	res := c.loader.Load(ctx)
	report := &Report{
		Query:        display,
		SnapshotPath: res.Path,
		LoadStatus:   res.Status,
		Entries:      len(res.Snapshot),
		Fingerprint:  res.Fingerprint,
	}

	if !res.Available() {
		report.Status = StatusSourceUnavailable
		return report
	}

	holders := c.engine.FindHolders(display, res.Snapshot)
	if len(holders) == 0 {
		report.Status = StatusNoMatch
		report.Suggestions = c.engine.Suggest(display, res.Snapshot)
		return report
	}

	report.Status = StatusHeld
	for _, h := range holders.Holders() {
		report.Holders = append(report.Holders, HolderPaths{Holder: h, Paths: holders.Paths(h)})
	}
	return report
}

// Status loads the snapshot without matching, for operator diagnostics
func (c *Checker) Status(ctx context.Context) snapshot.Result {
	return c.loader.Load(ctx)
}

var _ Loader = (*snapshot.Store)(nil)
