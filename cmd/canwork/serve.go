package main

import (
	"errors"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/canwork/internal/canwork"
	"github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/mcp"
	"github.com/standardbeagle/canwork/internal/server"
)

// serveCommand runs the HTTP transport until SIGINT or SIGTERM
func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	checker := canwork.NewFromConfig(cfg)
	srv, err := server.NewCheckServer(cfg, checker)
	if err != nil {
		return err
	}

	if !checker.Status(c.Context).Available() {
		log.Printf("[canwork] snapshot %s does not exist yet; answering 'not available' until the watcher writes it", cfg.Snapshot.File)
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()
	return srv.ListenAndServe(ctx)
}

// mcpCommand serves the MCP tool over stdio. Nothing but protocol traffic may reach stdout.
func mcpCommand(c *cli.Context) error {
	debug.SetMCPMode(true)

	cfg, err := loadConfig(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	if err := mcp.NewServer(canwork.NewFromConfig(cfg)).Start(ctx); err != nil && !errors.Is(err, ctx.Err()) {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	return nil
}
