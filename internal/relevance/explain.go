// Package relevance - this file supports the "profiles explain" introspection
// command by rendering, for a single candidate, which scorer rule matched and
// why, instead of the dry-run pipeline's terse manifest tags.
package relevance

import "fmt"

// Explanation describes the outcome of scoring a single candidate, including
// the human-readable reason a rule matched.
type Explanation struct {
	Path      string
	Depth     int
	Score     int
	Rule      string
	FullMatch bool
}

// ruleDescriptions gives a one-line human description per rule name, used to
// render the "why" in Format.
var ruleDescriptions = map[string]string{
	"readme":         "basename matches README (any case, any extension)",
	"entrypoint":     "basename matches a known entry point pattern",
	"config":         "basename matches a known project configuration file",
	"fixture_dir":    "path contains a fixture/snapshot directory segment",
	"test":           "path or basename matches test conventions",
	"depth_fallback": "no rule matched; scored by source depth",
}

// Explain scores path at the given depth and full-match matcher, returning a
// populated Explanation.
func Explain(path string, depth int, fullMatch *FullMatchMatcher) Explanation {
	score, rule := Score(path, depth)
	e := Explanation{Path: path, Depth: depth, Score: score, Rule: rule}
	if fullMatch != nil {
		e.FullMatch = fullMatch.Match(path)
	}
	return e
}

// Format renders a single-line human-readable explanation.
func (e Explanation) Format() string {
	desc := ruleDescriptions[e.Rule]
	if desc == "" {
		desc = e.Rule
	}
	suffix := ""
	if e.FullMatch {
		suffix = " [full-match]"
	}
	return fmt.Sprintf("%-40s score=%-3d rule=%-16s (%s)%s", e.Path, e.Score, e.Rule, desc, suffix)
}

// ExplainAll scores every path in paths (using corresponding depths) and
// returns their explanations in input order.
func ExplainAll(paths []string, depths []int, fullMatch *FullMatchMatcher) []Explanation {
	out := make([]Explanation, len(paths))
	for i, p := range paths {
		d := 0
		if i < len(depths) {
			d = depths[i]
		}
		out[i] = Explain(p, d, fullMatch)
	}
	return out
}
