package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

type tomlConfig struct {
	Snapshot struct {
		File         string   `toml:"file"`
		TrimPrefixes []string `toml:"trim_prefixes"`
		Ignore       []string `toml:"ignore"`
	} `toml:"snapshot"`
	Bot struct {
		Token string `toml:"token"`
	} `toml:"bot"`
	Server struct {
		Listen             string `toml:"listen"`
		ShutdownTimeoutSec *int   `toml:"shutdown_timeout_sec"`
	} `toml:"server"`
	Match struct {
		Suggestions      *int     `toml:"suggestions"`
		SuggestThreshold *float64 `toml:"suggest_threshold"`
	} `toml:"match"`
}

// parseTOML reads the same layout as the KDL config:
//
//	[snapshot]
//	file = "runtime/opened_snapshot.json"
//	trim_prefixes = ["//depot/Project/"]
func parseTOML(content []byte, baseDir string) (*Config, error) {
	cfg := Default(baseDir)

	var raw tomlConfig
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if raw.Snapshot.File != "" {
		cfg.Snapshot.File = raw.Snapshot.File
	}
	cfg.Snapshot.TrimPrefixes = prefixesOrDefault(raw.Snapshot.TrimPrefixes)
	cfg.Snapshot.Ignore = raw.Snapshot.Ignore
	cfg.Bot.Token = raw.Bot.Token
	if raw.Server.Listen != "" {
		cfg.Server.Listen = raw.Server.Listen
	}
	if raw.Server.ShutdownTimeoutSec != nil {
		cfg.Server.ShutdownTimeoutSec = *raw.Server.ShutdownTimeoutSec
	}
	if raw.Match.Suggestions != nil {
		cfg.Match.Suggestions = *raw.Match.Suggestions
	}
	if raw.Match.SuggestThreshold != nil {
		cfg.Match.SuggestThreshold = *raw.Match.SuggestThreshold
	}

	return cfg, nil
}
