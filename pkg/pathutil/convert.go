// Package pathutil converts between the path conventions used by the depot,
// the opened-files watcher and the people asking about a file.
//
// Architecture Pattern:
// The depot records files by their full depot path (//depot/Project/...).
// The watcher and the users talk about the same files by a "short" path with
// a known root stripped, in whatever case and separator style they like.
// Every comparison runs on Normalize output; every display uses the short form.
package pathutil

import (
	"strings"
)

// Normalize converts a path into its comparable form: forward slashes,
// surrounding whitespace trimmed, lower-cased.
//
// Examples:
//   - Normalize(`  Content\Maps\L_Lobby.umap `) → "content/maps/l_lobby.umap"
//   - Normalize("") → ""
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/")))
}

// ShortenDepotPath converts a full depot path to the short form the watcher
// reports. The first prefix the path starts with is stripped and no other
// prefix is tried, then a leading "//" and a leading "/" are removed.
// An empty prefix matches every path, so it ends the search.
//
// Examples:
//   - ShortenDepotPath("//proj/Assets/foo.txt", []string{"//proj/"}) → "Assets/foo.txt"
//   - ShortenDepotPath("//other/Assets/foo.txt", []string{"//proj/"}) → "other/Assets/foo.txt"
//   - ShortenDepotPath("", prefixes) → ""
func ShortenDepotPath(depot string, prefixes []string) string {
	if depot == "" {
		return depot
	}

	s := depot
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "/")
	return s
}

// Basename returns the final "/"-separated segment of p.
// A path ending in "/" has an empty basename.
func Basename(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// DisplayQuery cleans a user-supplied reference for echoing back: forward
// slashes and trimmed whitespace, original case preserved.
func DisplayQuery(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/"))
}
