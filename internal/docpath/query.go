package docpath

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Match is one result of a JSONPath query.
type Match struct {
	// Path is the normalized location of the match, when ojg can report it.
	Path  string
	Value any
}

// Query runs a JSONPath selector against plain decoded values (or a Node,
// which is converted first). Wildcards and recursive descent are available
// here; path expressions do not support them.
func Query(root any, selector string) ([]Match, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	if n, ok := root.(Node); ok {
		root = n.Value()
	}

	locs := x.Locate(root, 0)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		vals := loc.Get(root)
		if len(vals) == 0 {
			continue
		}
		matches = append(matches, Match{Path: loc.String(), Value: vals[0]})
	}
	return matches, nil
}

// ToJSONPath converts a path expression into the equivalent JSONPath,
// numeric segments becoming bracket indices.
func ToJSONPath(path string) jp.Expr {
	x := jp.R()
	for _, seg := range Split(path) {
		if idx, ok := parseIndex(seg); ok {
			x = x.N(idx)
			continue
		}
		x = x.C(seg)
	}
	return x
}
