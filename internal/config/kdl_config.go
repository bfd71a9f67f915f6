package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Simple KDL parser for canwork configuration:
//
//	snapshot {
//	    file "runtime/opened_snapshot.json"
//	    trim_prefixes "//depot/Project/Game/" "//depot/"
//	    ignore "**/*.tmp"
//	}
//	bot { token "..." }
//	server { listen ":8080"; shutdown_timeout_sec 5 }
//	match { suggestions 3; suggest_threshold 0.85 }
func parseKDL(content string, baseDir string) (*Config, error) {
	cfg := Default(baseDir)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	var prefixes []string
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "snapshot":
			for _, cn := range n.Children {
				assignSimpleString(cn, "file", func(v string) { cfg.Snapshot.File = v })
				switch nodeName(cn) {
				case "trim_prefixes":
					prefixes = append(prefixes, allStringArgs(cn)...)
				case "ignore":
					cfg.Snapshot.Ignore = append(cfg.Snapshot.Ignore, allStringArgs(cn)...)
				}
			}
		case "bot":
			for _, cn := range n.Children {
				assignSimpleString(cn, "token", func(v string) { cfg.Bot.Token = v })
			}
		case "server":
			for _, cn := range n.Children {
				assignSimpleString(cn, "listen", func(v string) { cfg.Server.Listen = v })
				if nodeName(cn) == "shutdown_timeout_sec" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Server.ShutdownTimeoutSec = v
					}
				}
			}
		case "match":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "suggestions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Match.Suggestions = v
					}
				case "suggest_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Match.SuggestThreshold = v
					}
				}
			}
		}
	}
	cfg.Snapshot.TrimPrefixes = prefixesOrDefault(prefixes)

	return cfg, nil
}

// Helper functions leveraging kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// allStringArgs returns every string argument in order, skipping other types.
// Empty strings are kept so the validator sees them as JSON and TOML would.
func allStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		if s, ok := arg.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
