package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/version"

	"github.com/urfave/cli/v2"
)

// loadConfig loads the configuration named by --config
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "canwork",
		Usage:                  "Check whether a file is safe to work on before opening it in Perforce",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.json, .kdl or .toml)",
				Value:   config.DefaultConfigFile,
				EnvVars: []string{"CANWORK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "debug-log",
				Usage: "Write debug output (enabled with DEBUG=1) to a log file in this directory",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Report who holds files matching each reference",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print reports as JSON",
					},
					&cli.StringFlag{
						Name:  "server",
						Usage: "Ask a running 'canwork serve' at this URL instead of reading the snapshot",
					},
				},
				Action: checkCommand,
			},
			{
				Name:  "status",
				Usage: "Show snapshot location, freshness and entry count",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print status as JSON",
					},
				},
				Action: statusCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Re-check a file every time the snapshot changes",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before re-checking after a snapshot change",
						Value: defaultWatchDebounce,
					},
				},
				Action: watchCommand,
			},
			{
				Name:  "serve",
				Usage: "Serve canwork queries over HTTP (requires a bot token)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address (overrides config)",
					},
				},
				Action: serveCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the canwork tool over MCP stdio",
				Action: mcpCommand,
			},
		},
		Before: func(c *cli.Context) error {
			if dir := c.String("debug-log"); dir != "" {
				path, err := debug.InitDebugLogFile(dir)
				if err != nil {
					return fmt.Errorf("failed to initialize debug log: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Debug log: %s\n", path)
			} else if debug.IsDebugEnabled() {
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
