package canwork

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/canwork/internal/match"
	"github.com/standardbeagle/canwork/internal/types"
)

// Outcome is the user-facing answer category
type Outcome int

const (
	StatusNoMatch Outcome = iota
	StatusHeld
	StatusSourceUnavailable
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case StatusNoMatch:
		return "can_work"
	case StatusHeld:
		return "held"
	case StatusSourceUnavailable:
		return "snapshot_unavailable"
	default:
		return "unknown"
	}
}

// MarshalText encodes Outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an Outcome name
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{StatusNoMatch, StatusHeld, StatusSourceUnavailable} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// HolderPaths lists the matched paths one holder has open
type HolderPaths struct {
	Holder string   `json:"holder"`
	Paths  []string `json:"paths"`
}

// Report is the answer to one query
type Report struct {
	Query        string             `json:"query"`
	Status       Outcome            `json:"status"`
	Holders      []HolderPaths      `json:"holders,omitempty"`
	Suggestions  []match.Suggestion `json:"suggestions,omitempty"`
	SnapshotPath string             `json:"snapshotPath"`
	LoadStatus   types.LoadStatus   `json:"-"`
	Entries      int                `json:"entries"`
	Fingerprint  uint64             `json:"-"`
}

// CanWork reports whether nobody holds a matching file
func (r *Report) CanWork() bool {
	return r.Status == StatusNoMatch
}

// Text renders the report as the chat reply
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Checking: `%s`\n\n", r.Query)

	switch r.Status {
	case StatusSourceUnavailable:
		b.WriteString("⚠ Snapshot file does not exist yet.\n")
		fmt.Fprintf(&b, "Expected path: `%s`\n", r.SnapshotPath)
		b.WriteString("Make sure the opened-files watcher has run at least once.")

	case StatusHeld:
		b.WriteString("❌ **Cannot work safely:** file is currently opened by:")
		for _, h := range r.Holders {
			quoted := make([]string, len(h.Paths))
			for i, p := range h.Paths {
				quoted[i] = "`" + p + "`"
			}
			fmt.Fprintf(&b, "\n- **%s** → %s", h.Holder, strings.Join(quoted, ", "))
		}

	default:
		fmt.Fprintf(&b, "✅ **Can work:** no matching opened files found in `%s`.", filepath.Base(r.SnapshotPath))
		if len(r.Suggestions) > 0 {
			b.WriteString("\n\nDid you mean:")
			for _, s := range r.Suggestions {
				fmt.Fprintf(&b, "\n- `%s`", s.Path)
			}
		}
	}

	return b.String()
}
