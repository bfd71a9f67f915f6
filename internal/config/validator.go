package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	cwerrors "github.com/standardbeagle/canwork/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Every failing section is reported, not just the first.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg == nil {
		return cwerrors.NewConfigMissingError("configuration", "")
	}

	v.setSmartDefaults(cfg)

	errs := []error{
		v.validateSnapshotConfig(&cfg.Snapshot),
		v.validateServerConfig(&cfg.Server),
		v.validateMatchConfig(&cfg.Match),
	}
	return cwerrors.NewMultiError(errs).ErrorOrNil()
}

// validateSnapshotConfig validates snapshot source configuration
func (v *Validator) validateSnapshotConfig(snap *Snapshot) error {
	if strings.TrimSpace(snap.File) == "" {
		return cwerrors.NewConfigError("snapshot.file", "", errors.New("snapshot file cannot be empty"))
	}

	for i, prefix := range snap.TrimPrefixes {
		if prefix == "" {
			return cwerrors.NewConfigError("snapshot.trim_prefixes", strconv.Itoa(i), errors.New("prefix cannot be empty"))
		}
	}

	for _, pattern := range snap.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return cwerrors.NewConfigError("snapshot.ignore", pattern, errors.New("invalid glob pattern"))
		}
	}

	return nil
}

// validateServerConfig validates HTTP transport configuration
func (v *Validator) validateServerConfig(srv *Server) error {
	if srv.ShutdownTimeoutSec < 0 {
		return cwerrors.NewConfigError("server.shutdown_timeout_sec", strconv.Itoa(srv.ShutdownTimeoutSec),
			fmt.Errorf("cannot be negative, got %d", srv.ShutdownTimeoutSec))
	}
	return nil
}

// validateMatchConfig validates suggestion settings
func (v *Validator) validateMatchConfig(m *Match) error {
	if m.Suggestions < 0 {
		return cwerrors.NewConfigError("match.suggestions", strconv.Itoa(m.Suggestions),
			fmt.Errorf("cannot be negative, got %d", m.Suggestions))
	}

	if m.SuggestThreshold <= 0 || m.SuggestThreshold > 1 {
		return cwerrors.NewConfigError("match.suggest_threshold", strconv.FormatFloat(m.SuggestThreshold, 'g', -1, 64),
			errors.New("must be in (0, 1]"))
	}

	return nil
}

// setSmartDefaults fills settings that have no meaningful zero value
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}

	if cfg.Server.ShutdownTimeoutSec == 0 {
		cfg.Server.ShutdownTimeoutSec = DefaultShutdownTimeoutSec
	}

	if len(cfg.Snapshot.TrimPrefixes) == 0 {
		cfg.Snapshot.TrimPrefixes = prefixesOrDefault()
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
