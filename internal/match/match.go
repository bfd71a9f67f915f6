// Package match decides which snapshot entries a user's file reference
// points at, and who holds them.
//
// A reference may be a bare filename, a partial directory path or a full
// depot path. Matching is layered:
//
//  1. exact or suffix match against the normalized depot path, short path
//     or basename
//  2. otherwise, substring match against the normalized short path
//
// The substring rule can over-match (a short query inside an unrelated
// directory name). That is accepted: a false positive only tells the user it
// is not safe to work, it never loses data.
package match

import (
	"strings"

	"github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/types"
	"github.com/standardbeagle/canwork/pkg/pathutil"
)

// candidate is one snapshot entry prepared for comparison
type candidate struct {
	holder    string
	display   string // short path, or the raw depot path when shortening yields nothing
	depotNorm string
	shortNorm string
	baseNorm  string
}

func newCandidate(rec types.OpenFileRecord, prefixes []string) candidate {
	short := pathutil.ShortenDepotPath(rec.DepotFile, prefixes)
	if short == "" {
		short = rec.DepotFile
	}
	shortNorm := pathutil.Normalize(short)

	return candidate{
		holder:    rec.User,
		display:   short,
		depotNorm: pathutil.Normalize(rec.DepotFile),
		shortNorm: shortNorm,
		baseNorm:  pathutil.Basename(shortNorm),
	}
}

// matches applies the layered policy to an already-normalized, non-empty query
func (c candidate) matches(q string) bool {
	for _, s := range [...]string{c.depotNorm, c.shortNorm, c.baseNorm} {
		if s == "" {
			continue
		}
		if s == q || strings.HasSuffix(s, q) {
			return true
		}
	}

	// Loose match (e.g. partial directory name)
	return strings.Contains(c.shortNorm, q)
}

// FindHolders returns, per holder, the distinct short paths in snap that
// match target. An empty (or all-whitespace) target matches nothing.
func FindHolders(target string, snap types.Snapshot, prefixes []string) types.MatchResult {
	return findHolders(target, snap, prefixes, nil)
}

func findHolders(target string, snap types.Snapshot, prefixes []string, skip func(candidate) bool) types.MatchResult {
	result := types.MatchResult{}

	q := pathutil.Normalize(target)
	if q == "" || len(snap) == 0 {
		return result
	}

	matchCount := 0
	for _, rec := range snap {
		c := newCandidate(rec, prefixes)
		if skip != nil && skip(c) {
			continue
		}
		if !c.matches(q) {
			continue
		}
		matchCount++
		result.Add(c.holder, c.display)
	}

	debug.LogMatch("target='%s', matches=%d\n", q, matchCount)
	return result
}
