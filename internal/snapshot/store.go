// Package snapshot reads the opened-files snapshot written by the external
// watcher. Every Load reads the file again; nothing is cached between calls,
// so concurrent callers each get their own independent Snapshot.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/canwork/internal/debug"
	cwerrors "github.com/standardbeagle/canwork/internal/errors"
	"github.com/standardbeagle/canwork/internal/types"
)

// utf8BOM is written by PowerShell's UTF8 encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is the outcome of one Load.
// Snapshot is never nil; it is empty unless Status is StatusLoaded.
type Result struct {
	Snapshot    types.Snapshot
	Status      types.LoadStatus
	Err         error // Set for StatusMalformed and StatusCanceled
	Path        string
	Fingerprint uint64 // xxhash64 of the raw file content
	ModTime     time.Time
	Skipped     int // Entries dropped because their value was not a record
}

// Available reports whether the watcher has produced a snapshot at all.
// A malformed snapshot counts as available: it exists, it just holds nothing usable.
func (r Result) Available() bool {
	return r.Status != types.StatusMissing
}

// Store loads the snapshot from a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the snapshot at path
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the snapshot location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the snapshot file is currently present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and parses the snapshot. It never returns an error: a missing
// file yields StatusMissing, an unreadable or unparsable one StatusMalformed
// with the diagnostic in Result.Err.
func (s *Store) Load(ctx context.Context) Result {
	res := Result{
		Snapshot: types.Snapshot{},
		Path:     s.path,
	}

	if err := ctx.Err(); err != nil {
		res.Status = types.StatusCanceled
		res.Err = err
		return res
	}

	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		debug.LogSnapshot("snapshot not found: %s\n", s.path)
		res.Status = types.StatusMissing
		return res
	}
	if err != nil {
		return s.malformed(res, "read", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		res.ModTime = info.ModTime()
	}

	res.Fingerprint = xxhash.Sum64(content)

	snap, skipped, err := Parse(content)
	if err != nil {
		return s.malformed(res, "parse", err)
	}
	if skipped > 0 {
		log.Printf("[canwork] skipped %d snapshot entries that are not records in %s", skipped, s.path)
	}

	res.Snapshot = snap
	res.Skipped = skipped
	res.Status = types.StatusLoaded
	debug.LogSnapshot("snapshot loaded: %d entries from %s (fingerprint %016x)\n", len(snap), s.path, res.Fingerprint)
	return res
}

func (s *Store) malformed(res Result, op string, err error) Result {
	res.Status = types.StatusMalformed
	res.Err = cwerrors.NewSnapshotError(cwerrors.ErrorTypeSourceMalformed, op, s.path, err)
	log.Printf("[canwork] %v", res.Err)
	return res
}

// Parse decodes snapshot content: a JSON object mapping entry ids to records.
// Leading byte-order marks are stripped first. Entries whose value is not an
// object (or whose fields have the wrong type) are skipped and counted.
func Parse(content []byte) (types.Snapshot, int, error) {
	for bytes.HasPrefix(content, utf8BOM) {
		content = content[len(utf8BOM):]
	}
	content = bytes.TrimSpace(content)

	if len(content) == 0 {
		return nil, 0, errors.New("snapshot is empty")
	}
	if content[0] != '{' {
		return nil, 0, errors.New("snapshot is not a JSON object")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, 0, fmt.Errorf("JSON decode error: %w", err)
	}

	snap := make(types.Snapshot, len(raw))
	skipped := 0
	for id, value := range raw {
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] != '{' {
			skipped++
			continue
		}

		var rec types.OpenFileRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			skipped++
			continue
		}
		snap[id] = rec.WithDefaults()
	}

	return snap, skipped, nil
}
