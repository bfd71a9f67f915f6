package match

import (
	"log"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/types"
	"github.com/standardbeagle/canwork/pkg/pathutil"
)

// Engine applies FindHolders with the configured prefixes and ignore globs,
// and proposes near-miss paths when nothing matched.
// An Engine holds no per-query state and is safe for concurrent use.
type Engine struct {
	prefixes         []string
	ignore           []string
	suggestions      int
	suggestThreshold float32
}

// NewEngine builds an engine from the snapshot and match sections of the config
func NewEngine(snap config.Snapshot, m config.Match) *Engine {
	ignore := make([]string, 0, len(snap.Ignore))
	for _, pattern := range snap.Ignore {
		// Patterns compare against normalized paths
		ignore = append(ignore, pathutil.Normalize(pattern))
	}

	return &Engine{
		prefixes:         append([]string(nil), snap.TrimPrefixes...),
		ignore:           ignore,
		suggestions:      m.Suggestions,
		suggestThreshold: float32(m.SuggestThreshold),
	}
}

// Prefixes returns the depot prefixes stripped to form short paths
func (e *Engine) Prefixes() []string {
	return e.prefixes
}

// FindHolders matches target against snap, leaving out ignored entries
func (e *Engine) FindHolders(target string, snap types.Snapshot) types.MatchResult {
	if len(e.ignore) == 0 {
		return FindHolders(target, snap, e.prefixes)
	}
	return findHolders(target, snap, e.prefixes, e.ignored)
}

func (e *Engine) ignored(c candidate) bool {
	for _, pattern := range e.ignore {
		matched, err := doublestar.Match(pattern, c.shortNorm)
		if err != nil {
			log.Printf("[canwork] invalid ignore pattern %q: %v", pattern, err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Suggestion is a snapshot path whose basename resembles the query's
type Suggestion struct {
	Path  string  `json:"path"`
	Score float32 `json:"score"`
}

// Suggest returns up to the configured number of distinct short paths whose
// basename is similar to the basename of target, best first.
// It is informational only and never affects FindHolders.
func (e *Engine) Suggest(target string, snap types.Snapshot) []Suggestion {
	q := pathutil.Basename(pathutil.Normalize(target))
	if q == "" || e.suggestions <= 0 || len(snap) == 0 {
		return nil
	}

	best := make(map[string]float32)
	for _, rec := range snap {
		c := newCandidate(rec, e.prefixes)
		if c.baseNorm == "" || (len(e.ignore) > 0 && e.ignored(c)) {
			continue
		}
		score, err := edlib.StringsSimilarity(q, c.baseNorm, edlib.JaroWinkler)
		if err != nil || score < e.suggestThreshold {
			continue
		}
		if prev, ok := best[c.display]; !ok || score > prev {
			best[c.display] = score
		}
	}

	out := make([]Suggestion, 0, len(best))
	for path, score := range best {
		out = append(out, Suggestion{Path: path, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})

	if len(out) > e.suggestions {
		out = out[:e.suggestions]
	}
	return out
}
