package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	cwerrors "github.com/standardbeagle/canwork/internal/errors"
	"github.com/standardbeagle/canwork/internal/types"
)

// Defaults used when a setting is absent from every source
const (
	DefaultConfigFile         = "config.json"
	DefaultListen             = ":8080"
	DefaultShutdownTimeoutSec = 5
	DefaultSuggestions        = 3
	DefaultSuggestThreshold   = 0.85

	// TokenEnvVar supplies the bot token when the config file has none.
	// It is also read from a .env file next to the config file.
	TokenEnvVar = "CANWORK_BOT_TOKEN"
)

// Config is loaded once at startup and never mutated afterwards.
// Components receive it (or the part they need) explicitly.
type Config struct {
	Version  int
	Source   string // Path of the file this config was loaded from
	BaseDir  string // Relative paths resolve against this directory
	Snapshot Snapshot
	Bot      Bot
	Server   Server
	Match    Match
}

type Snapshot struct {
	File         string   // Watcher output, absolute after Load
	TrimPrefixes []string // First matching prefix is stripped from depot paths
	Ignore       []string // doublestar globs on normalized short paths
}

type Bot struct {
	Token string
}

type Server struct {
	Listen             string
	ShutdownTimeoutSec int
}

type Match struct {
	Suggestions      int     // 0 disables "did you mean"
	SuggestThreshold float64 // Jaro-Winkler similarity in (0, 1]
}

// Default returns a config with every setting at its default value,
// rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		Version: 1,
		BaseDir: baseDir,
		Snapshot: Snapshot{
			File:         types.DefaultSnapshotFile,
			TrimPrefixes: append([]string(nil), types.DefaultTrimPrefixes...),
		},
		Server: Server{
			Listen:             DefaultListen,
			ShutdownTimeoutSec: DefaultShutdownTimeoutSec,
		},
		Match: Match{
			Suggestions:      DefaultSuggestions,
			SuggestThreshold: DefaultSuggestThreshold,
		},
	}
}

// Load reads the config file at path. The format is picked by extension:
// .kdl and .toml use their own layouts, anything else is read as the bot's
// JSON layout. A missing file is a ConfigurationMissing error.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}

	content, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return nil, cwerrors.NewConfigMissingError("config file", absPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}
	content = stripBOM(content)

	baseDir := filepath.Dir(absPath)
	var cfg *Config
	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".kdl":
		cfg, err = parseKDL(string(content), baseDir)
	case ".toml":
		cfg, err = parseTOML(content, baseDir)
	default:
		cfg, err = parseJSON(content, baseDir)
	}
	if err != nil {
		return nil, err
	}
	cfg.Source = absPath

	applyEnv(cfg)
	cfg.resolvePaths()

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireToken returns a ConfigurationMissing error when no bot token is configured.
// Only transports that authenticate callers need it.
func (c *Config) RequireToken() error {
	if c == nil {
		return cwerrors.NewConfigMissingError("configuration", "")
	}
	if strings.TrimSpace(c.Bot.Token) == "" {
		return cwerrors.NewConfigMissingError("bot token", "set canworkBot.botToken or "+TokenEnvVar)
	}
	return nil
}

// applyEnv fills a missing token from the process environment, then from BaseDir/.env.
// The process environment is never modified.
func applyEnv(cfg *Config) {
	cfg.Bot.Token = strings.TrimSpace(cfg.Bot.Token)
	if cfg.Bot.Token != "" {
		return
	}
	if v := strings.TrimSpace(os.Getenv(TokenEnvVar)); v != "" {
		cfg.Bot.Token = v
		return
	}
	env, err := godotenv.Read(filepath.Join(cfg.BaseDir, ".env"))
	if err != nil {
		return
	}
	cfg.Bot.Token = strings.TrimSpace(env[TokenEnvVar])
}

func (c *Config) resolvePaths() {
	if c.Snapshot.File == "" {
		return
	}
	if !filepath.IsAbs(c.Snapshot.File) {
		c.Snapshot.File = filepath.Join(c.BaseDir, c.Snapshot.File)
	}
	c.Snapshot.File = filepath.Clean(c.Snapshot.File)
}

// prefixesOrDefault keeps configured prefixes in order, or falls back to the built-in list
func prefixesOrDefault(prefixes ...[]string) []string {
	for _, list := range prefixes {
		if len(list) > 0 {
			return append([]string(nil), list...)
		}
	}
	return append([]string(nil), types.DefaultTrimPrefixes...)
}

func stripBOM(b []byte) []byte {
	return []byte(strings.TrimLeft(string(b), "\ufeff"))
}
