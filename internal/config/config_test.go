package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cwerrors "github.com/standardbeagle/canwork/internal/errors"
	"github.com/standardbeagle/canwork/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileIsConfigMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerrors.ErrConfigMissing))
}

func TestLoad_JSONLayout(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
  "openedWatcher": {
    "snapshotFile": "runtime/snap.json",
    "trimPrefixes": ["//proj/Game/", "//proj/"]
  },
  "poller": { "trimPrefixes": ["//ignored/"] },
  "canworkBot": { "botToken": "  secret  ", "suggestions": 0 }
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "runtime", "snap.json"), cfg.Snapshot.File)
	assert.Equal(t, []string{"//proj/Game/", "//proj/"}, cfg.Snapshot.TrimPrefixes)
	assert.Equal(t, "secret", cfg.Bot.Token)
	assert.Equal(t, 0, cfg.Match.Suggestions)
	assert.Equal(t, DefaultSuggestThreshold, cfg.Match.SuggestThreshold)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_JSONPrefixFallbacks(t *testing.T) {
	dir := t.TempDir()

	poller := writeFile(t, dir, "poller.json", `{"poller": {"trimPrefixes": ["//poller/"]}}`)
	cfg, err := Load(poller)
	require.NoError(t, err)
	assert.Equal(t, []string{"//poller/"}, cfg.Snapshot.TrimPrefixes)

	none := writeFile(t, dir, "none.json", `{}`)
	cfg, err = Load(none)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTrimPrefixes, cfg.Snapshot.TrimPrefixes)
	assert.Equal(t, filepath.Join(dir, "runtime", "opened_snapshot.json"), cfg.Snapshot.File)
}

func TestLoad_JSONWithBOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", "\ufeff"+`{"canworkBot": {"botToken": "x"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Bot.Token)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"openedWatcher": `)
	_, err := Load(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, cwerrors.ErrConfigMissing))
}

func TestLoad_AbsoluteSnapshotPathKept(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	path := writeFile(t, dir, "config.toml", "[snapshot]\nfile = '"+abs+"'\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Snapshot.File)
}

func TestLoad_TOMLLayout(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "canwork.toml", `
[snapshot]
file = "snap.json"
trim_prefixes = ["//proj/"]
ignore = ["**/*.tmp"]

[bot]
token = "tok"

[server]
listen = "127.0.0.1:9000"
shutdown_timeout_sec = 2

[match]
suggestions = 5
suggest_threshold = 0.9
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snap.json"), cfg.Snapshot.File)
	assert.Equal(t, []string{"//proj/"}, cfg.Snapshot.TrimPrefixes)
	assert.Equal(t, []string{"**/*.tmp"}, cfg.Snapshot.Ignore)
	assert.Equal(t, "tok", cfg.Bot.Token)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, 2, cfg.Server.ShutdownTimeoutSec)
	assert.Equal(t, 5, cfg.Match.Suggestions)
	assert.Equal(t, 0.9, cfg.Match.SuggestThreshold)
}

func TestLoad_FormatsAgree(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	dir := t.TempDir()

	jsonCfg, err := Load(writeFile(t, dir, "a.json", `{
  "openedWatcher": {"snapshotFile": "s.json", "trimPrefixes": ["//p/"]},
  "canworkBot": {"botToken": "t"}
}`))
	require.NoError(t, err)

	kdlCfg, err := Load(writeFile(t, dir, "a.kdl", `
snapshot {
    file "s.json"
    trim_prefixes "//p/"
}
bot {
    token "t"
}
`))
	require.NoError(t, err)

	tomlCfg, err := Load(writeFile(t, dir, "a.toml", `
[snapshot]
file = "s.json"
trim_prefixes = ["//p/"]
[bot]
token = "t"
`))
	require.NoError(t, err)

	for _, cfg := range []*Config{kdlCfg, tomlCfg} {
		assert.Equal(t, jsonCfg.Snapshot, cfg.Snapshot)
		assert.Equal(t, jsonCfg.Bot, cfg.Bot)
		assert.Equal(t, jsonCfg.Server, cfg.Server)
		assert.Equal(t, jsonCfg.Match, cfg.Match)
	}
}

func TestLoad_FormatsAgreeOnEmptyPrefix(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	dir := t.TempDir()

	files := map[string]string{
		"a.json": `{"openedWatcher": {"trimPrefixes": ["//p/", ""]}}`,
		"a.kdl":  "snapshot {\n    trim_prefixes \"//p/\" \"\"\n}\n",
		"a.toml": "[snapshot]\ntrim_prefixes = [\"//p/\", \"\"]\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, name, content))
			require.Error(t, err)
			assert.ErrorContains(t, err, "prefix cannot be empty")
		})
	}
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{}`)

	t.Setenv(TokenEnvVar, "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Bot.Token)
}

func TestLoad_TokenFromDotEnv(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{}`)
	writeFile(t, dir, ".env", TokenEnvVar+"=from-dotenv\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Bot.Token)
	assert.Equal(t, "", os.Getenv(TokenEnvVar), "process environment must not change")
}

func TestLoad_ConfigTokenWinsOverEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"canworkBot": {"botToken": "file"}}`)

	t.Setenv(TokenEnvVar, "env")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Bot.Token)
}

func TestRequireToken(t *testing.T) {
	cfg := Default(t.TempDir())
	err := cfg.RequireToken()
	require.Error(t, err)
	assert.True(t, errors.Is(err, cwerrors.ErrConfigMissing))

	cfg.Bot.Token = "x"
	assert.NoError(t, cfg.RequireToken())

	var nilCfg *Config
	assert.True(t, errors.Is(nilCfg.RequireToken(), cwerrors.ErrConfigMissing))
}

func TestDefault_PrefixesAreACopy(t *testing.T) {
	cfg := Default("")
	cfg.Snapshot.TrimPrefixes[0] = "changed"
	assert.NotEqual(t, "changed", types.DefaultTrimPrefixes[0])
}
