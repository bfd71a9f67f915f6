package types

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Common system-wide constants
const (
	// UnknownHolder is recorded when a snapshot entry carries no user.
	UnknownHolder = "unknown"

	// DefaultSnapshotFile is the watcher's output, relative to the bot's base directory.
	DefaultSnapshotFile = "runtime/opened_snapshot.json"
)

// DefaultTrimPrefixes are stripped from depot paths when no prefixes are configured.
// Order matters: the first prefix a depot path starts with is the only one removed.
var DefaultTrimPrefixes = []string{
	"//f25_kimbap_games/UnrealEngine/KimbapGame/KimbapGame/",
	"//f25_kimbap_games/UnrealEngine/KimbapGame/",
	"//f25_kimbap_games/",
}

// OpenFileRecord is one entry of the watcher's snapshot.
// Defaults are applied once when the snapshot is parsed.
type OpenFileRecord struct {
	DepotFile string `json:"depotFile"`
	User      string `json:"user"`

	// Written by the watcher but not used for matching
	Action string `json:"action,omitempty"`
	Change string `json:"change,omitempty"`
	Client string `json:"client,omitempty"`
}

// UnmarshalJSON decodes one snapshot entry. Field types are not trusted:
// a string is taken as is, a number or boolean by its literal text, and
// anything else (null, object, array) as absent. Unknown keys are ignored,
// so only a non-object entry fails to decode.
func (r *OpenFileRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = OpenFileRecord{
		DepotFile: scalarString(fields["depotFile"]),
		User:      scalarString(fields["user"]),
		Action:    scalarString(fields["action"]),
		Change:    scalarString(fields["change"]),
		Client:    scalarString(fields["client"]),
	}
	return nil
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return s
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	default:
		return ""
	}
}

// WithDefaults returns the record with a missing holder replaced by UnknownHolder.
func (r OpenFileRecord) WithDefaults() OpenFileRecord {
	if r.User == "" {
		r.User = UnknownHolder
	}
	return r
}

// Snapshot maps the watcher's opaque entry id to its record.
type Snapshot map[string]OpenFileRecord

// LoadStatus distinguishes why a snapshot is (or is not) populated.
type LoadStatus int

const (
	StatusLoaded LoadStatus = iota
	StatusMissing
	StatusMalformed
	StatusCanceled
)

// String returns the string representation of LoadStatus
func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusMissing:
		return "missing"
	case StatusMalformed:
		return "malformed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// MatchResult groups matched short paths by holder.
// A holder is only present when it holds at least one matching path.
type MatchResult map[string]map[string]struct{}

// Add records path as held by holder.
func (m MatchResult) Add(holder, path string) {
	paths, ok := m[holder]
	if !ok {
		paths = make(map[string]struct{})
		m[holder] = paths
	}
	paths[path] = struct{}{}
}

// Holders returns the holders in lexicographic order.
func (m MatchResult) Holders() []string {
	holders := make([]string, 0, len(m))
	for h := range m {
		holders = append(holders, h)
	}
	sort.Strings(holders)
	return holders
}

// Paths returns the holder's paths in lexicographic order.
func (m MatchResult) Paths(holder string) []string {
	set := m[holder]
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of distinct (holder, path) pairs.
func (m MatchResult) Len() int {
	n := 0
	for _, set := range m {
		n += len(set)
	}
	return n
}
