package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonConfig mirrors the shared config.json read by the watcher and the bot.
// Sections belonging to other tools are ignored.
type jsonConfig struct {
	OpenedWatcher struct {
		SnapshotFile string   `json:"snapshotFile"`
		TrimPrefixes []string `json:"trimPrefixes"`
		Ignore       []string `json:"ignore"`
	} `json:"openedWatcher"`
	Poller struct {
		TrimPrefixes []string `json:"trimPrefixes"`
	} `json:"poller"`
	CanworkBot struct {
		BotToken           string   `json:"botToken"`
		Listen             string   `json:"listen"`
		ShutdownTimeoutSec *int     `json:"shutdownTimeoutSec"`
		Suggestions        *int     `json:"suggestions"`
		SuggestThreshold   *float64 `json:"suggestThreshold"`
	} `json:"canworkBot"`
}

// parseJSON reads the config.json layout. openedWatcher.trimPrefixes wins
// over poller.trimPrefixes, which wins over the built-in prefixes.
func parseJSON(content []byte, baseDir string) (*Config, error) {
	cfg := Default(baseDir)

	if len(bytes.TrimSpace(content)) == 0 {
		return cfg, nil
	}

	var raw jsonConfig
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if raw.OpenedWatcher.SnapshotFile != "" {
		cfg.Snapshot.File = raw.OpenedWatcher.SnapshotFile
	}
	cfg.Snapshot.TrimPrefixes = prefixesOrDefault(raw.OpenedWatcher.TrimPrefixes, raw.Poller.TrimPrefixes)
	cfg.Snapshot.Ignore = raw.OpenedWatcher.Ignore

	cfg.Bot.Token = raw.CanworkBot.BotToken
	if raw.CanworkBot.Listen != "" {
		cfg.Server.Listen = raw.CanworkBot.Listen
	}
	if raw.CanworkBot.ShutdownTimeoutSec != nil {
		cfg.Server.ShutdownTimeoutSec = *raw.CanworkBot.ShutdownTimeoutSec
	}
	if raw.CanworkBot.Suggestions != nil {
		cfg.Match.Suggestions = *raw.CanworkBot.Suggestions
	}
	if raw.CanworkBot.SuggestThreshold != nil {
		cfg.Match.SuggestThreshold = *raw.CanworkBot.SuggestThreshold
	}

	return cfg, nil
}
