// Package testhelpers provides shared fixtures for canwork tests
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/canwork/internal/config"
)

// SnapshotFileName is the snapshot file written by the builder
const SnapshotFileName = "opened_snapshot.json"

// TestConfigBuilder builds a config rooted in a temp directory, optionally
// with a snapshot file already in place.
//
//	cfg := testhelpers.NewTestConfigBuilder(t).
//		WithTrimPrefixes("//proj/").
//		WithSnapshot(`{"1": {"depotFile": "//proj/a.txt", "user": "alice"}}`).
//		Build()
type TestConfigBuilder struct {
	t        *testing.T
	dir      string
	prefixes []string
	ignore   []string
	token    string
	snapshot *string
}

// NewTestConfigBuilder creates a builder over a fresh t.TempDir()
func NewTestConfigBuilder(t *testing.T) *TestConfigBuilder {
	t.Helper()
	return &TestConfigBuilder{
		t:        t,
		dir:      t.TempDir(),
		prefixes: []string{"//proj/"},
	}
}

// WithTrimPrefixes replaces the default //proj/ prefix
func (b *TestConfigBuilder) WithTrimPrefixes(prefixes ...string) *TestConfigBuilder {
	b.prefixes = prefixes
	return b
}

// WithIgnore adds ignore globs
func (b *TestConfigBuilder) WithIgnore(patterns ...string) *TestConfigBuilder {
	b.ignore = append(b.ignore, patterns...)
	return b
}

// WithToken sets the bot token
func (b *TestConfigBuilder) WithToken(token string) *TestConfigBuilder {
	b.token = token
	return b
}

// WithSnapshot writes content as the snapshot on Build. Without it the
// snapshot file does not exist.
func (b *TestConfigBuilder) WithSnapshot(content string) *TestConfigBuilder {
	b.snapshot = &content
	return b
}

// Build writes the snapshot (if any) and returns the config
func (b *TestConfigBuilder) Build() *config.Config {
	b.t.Helper()

	cfg := config.Default(b.dir)
	cfg.Snapshot.File = filepath.Join(b.dir, SnapshotFileName)
	cfg.Snapshot.TrimPrefixes = append([]string(nil), b.prefixes...)
	cfg.Snapshot.Ignore = append([]string(nil), b.ignore...)
	cfg.Bot.Token = b.token
	cfg.Server.ShutdownTimeoutSec = 1

	if b.snapshot != nil {
		WriteSnapshot(b.t, cfg.Snapshot.File, *b.snapshot)
	}

	require.NoError(b.t, config.ValidateConfig(cfg))
	return cfg
}

// WriteSnapshot replaces the snapshot at path with content
func WriteSnapshot(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
