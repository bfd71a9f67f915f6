package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the canwork system
type ErrorType string

const (
	// Configuration errors
	ErrorTypeConfigMissing ErrorType = "config_missing"
	ErrorTypeConfig        ErrorType = "config"

	// Snapshot errors
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	ErrorTypeSourceMalformed   ErrorType = "source_malformed"
)

// ErrConfigMissing is matched by every ConfigError of type ErrorTypeConfigMissing
var ErrConfigMissing = errors.New("required configuration missing")

// ConfigError represents a configuration error
type ConfigError struct {
	Type       ErrorType
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfig,
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewConfigMissingError reports a required setting (or the config file itself) as absent.
// These errors are fatal at startup.
func NewConfigMissingError(field, detail string) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfigMissing,
		Field:      field,
		Value:      detail,
		Underlying: ErrConfigMissing,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Type == ErrorTypeConfigMissing {
		if e.Value != "" {
			return fmt.Sprintf("config error: %s is missing (%s)", e.Field, e.Value)
		}
		return fmt.Sprintf("config error: %s is missing", e.Field)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// SnapshotError represents a failure to read or parse the opened-files snapshot.
// It never reaches end users; it is kept for operator diagnostics.
type SnapshotError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewSnapshotError creates a new snapshot error
func NewSnapshotError(errType ErrorType, op, path string, err error) *SnapshotError {
	return &SnapshotError{
		Type:       errType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SnapshotError) Unwrap() error {
	return e.Underlying
}

// IsMalformed reports whether err is a snapshot parse failure
func IsMalformed(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se) && se.Type == ErrorTypeSourceMalformed
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
