package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cwerrors "github.com/standardbeagle/canwork/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{
		Snapshot: Snapshot{File: "/data/opened_snapshot.json"},
		Match:    Match{Suggestions: 2, SuggestThreshold: 0.8},
	}

	validator := NewValidator()
	require.NoError(t, validator.ValidateAndSetDefaults(cfg))

	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, DefaultShutdownTimeoutSec, cfg.Server.ShutdownTimeoutSec)
	assert.NotEmpty(t, cfg.Snapshot.TrimPrefixes)
}

func TestValidateAndSetDefaults_Nil(t *testing.T) {
	err := ValidateConfig(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerrors.ErrConfigMissing))
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{
			name:   "empty snapshot file",
			modify: func(c *Config) { c.Snapshot.File = "  " },
			field:  "snapshot.file",
		},
		{
			name:   "empty prefix",
			modify: func(c *Config) { c.Snapshot.TrimPrefixes = []string{"//a/", ""} },
			field:  "snapshot.trim_prefixes",
		},
		{
			name:   "bad glob",
			modify: func(c *Config) { c.Snapshot.Ignore = []string{"[unclosed"} },
			field:  "snapshot.ignore",
		},
		{
			name:   "negative shutdown timeout",
			modify: func(c *Config) { c.Server.ShutdownTimeoutSec = -1 },
			field:  "server.shutdown_timeout_sec",
		},
		{
			name:   "negative suggestions",
			modify: func(c *Config) { c.Match.Suggestions = -1 },
			field:  "match.suggestions",
		},
		{
			name:   "threshold above one",
			modify: func(c *Config) { c.Match.SuggestThreshold = 1.5 },
			field:  "match.suggest_threshold",
		},
		{
			name:   "zero threshold",
			modify: func(c *Config) { c.Match.SuggestThreshold = 0 },
			field:  "match.suggest_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/base")
			cfg.Snapshot.File = "/base/snap.json"
			tt.modify(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)

			var cfgErr *cwerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateAndSetDefaults_ReportsEverySection(t *testing.T) {
	cfg := Default("/base")
	cfg.Snapshot.File = ""
	cfg.Match.Suggestions = -3

	err := ValidateConfig(cfg)
	require.Error(t, err)

	var multi *cwerrors.MultiError
	require.True(t, errors.As(err, &multi))
	assert.Len(t, multi.Errors, 2)
}
