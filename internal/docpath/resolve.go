package docpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RefMarker prefixes an in-document pointer.
const RefMarker = "#/"

// DefaultMaxReferenceDepth caps how many pointers a single resolution follows.
const DefaultMaxReferenceDepth = 32

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrReferenceCycle  = errors.New("reference cycle")
)

// Option configures a Resolver.
type Option func(*Resolver)

// Strict makes absent keys fail with ErrKeyNotFound instead of yielding Missing.
func Strict(strict bool) Option {
	return func(r *Resolver) { r.strict = strict }
}

// ReferenceRoot sets the path that pointers are relative to.
// NOMAD responses keep their pointers relative to the "archive" section.
func ReferenceRoot(path string) Option {
	return func(r *Resolver) { r.refRoot = Split(path) }
}

// MaxReferenceDepth bounds the length of a pointer chain.
func MaxReferenceDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// Resolver walks path expressions through a document.
// It holds no state between calls and is safe for concurrent use.
type Resolver struct {
	strict   bool
	refRoot  []string
	maxDepth int
}

// New returns a Resolver configured with opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{maxDepth: DefaultMaxReferenceDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a convenience for New(opts...).Resolve(doc, path).
func Resolve(doc Node, path string, opts ...Option) (Node, error) {
	return New(opts...).Resolve(doc, path)
}

// Split breaks a path expression into segments, dropping the reference
// marker and empty segments. A bare "#" names the root.
func Split(path string) []string {
	if path == "#" {
		return nil
	}
	path = strings.TrimPrefix(path, RefMarker)
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// IsReference reports whether s is an in-document pointer.
func IsReference(s string) bool {
	return strings.HasPrefix(s, RefMarker)
}

// Resolve returns the node at path. A string result carrying the reference
// marker is followed from the reference root until a non-pointer is reached.
func (r *Resolver) Resolve(doc Node, path string) (Node, error) {
	segs := Split(path)
	n, err := r.walk(doc, nil, segs)
	if err != nil || IsMissing(n) {
		return n, err
	}
	return r.deref(doc, n, path, map[string]bool{pathKey(nil, segs): true})
}

// Follow resolves path and treats the located field as a pointer list:
// a string or a sequence of strings, each naming another location.
// Pointers may omit the reference marker.
func (r *Resolver) Follow(doc Node, path string) (Node, error) {
	n, err := r.walk(doc, nil, Split(path))
	if err != nil || IsMissing(n) {
		return n, err
	}
	switch t := n.(type) {
	case Scalar:
		ptr, ok := t.String()
		if !ok {
			return nil, fmt.Errorf("%s: %w: pointer is %T, not a string", path, ErrTypeMismatch, t.V)
		}
		return r.follow(doc, ptr)
	case Sequence:
		out := make(Sequence, 0, len(t))
		for i, item := range t {
			s, ok := item.(Scalar)
			ptr, isStr := s.String()
			if !ok || !isStr {
				return nil, fmt.Errorf("%s/%d: %w: pointer list holds a %s", path, i, ErrTypeMismatch, item.Kind())
			}
			target, err := r.follow(doc, ptr)
			if err != nil {
				return nil, err
			}
			out = append(out, target)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %w: expected pointer, found %s", path, ErrTypeMismatch, n.Kind())
	}
}

func (r *Resolver) follow(doc Node, ptr string) (Node, error) {
	segs := Split(ptr)
	visited := map[string]bool{pathKey(r.refRoot, segs): true}
	n, err := r.walk(doc, r.refRoot, segs)
	if err != nil || IsMissing(n) {
		return n, err
	}
	return r.deref(doc, n, ptr, visited)
}

// deref follows marker-carrying strings with cycle detection.
func (r *Resolver) deref(doc Node, n Node, from string, visited map[string]bool) (Node, error) {
	for depth := 0; ; depth++ {
		s, ok := n.(Scalar)
		if !ok {
			return n, nil
		}
		ptr, ok := s.String()
		if !ok || !IsReference(ptr) {
			return n, nil
		}
		if depth >= r.maxDepth {
			return nil, fmt.Errorf("%s: %w: more than %d references", from, ErrReferenceCycle, r.maxDepth)
		}
		segs := Split(ptr)
		target := pathKey(r.refRoot, segs)
		if visited[target] {
			return nil, fmt.Errorf("%s: %w: %s visited twice", from, ErrReferenceCycle, ptr)
		}
		visited[target] = true

		next, err := r.walk(doc, r.refRoot, segs)
		if err != nil || IsMissing(next) {
			return next, err
		}
		n = next
	}
}

// walk descends through prefix and then segs. The prefix is the reference
// root and is reported as part of the path in errors.
func (r *Resolver) walk(doc Node, prefix, segs []string) (Node, error) {
	all := make([]string, 0, len(prefix)+len(segs))
	all = append(all, prefix...)
	all = append(all, segs...)

	cur := doc
	for i, seg := range all {
		at := strings.Join(all[:i+1], "/")
		idx, numeric := parseIndex(seg)
		switch t := cur.(type) {
		case Mapping:
			if numeric {
				return nil, fmt.Errorf("%s: %w: index %d applied to a mapping", at, ErrTypeMismatch, idx)
			}
			child, ok := t[seg]
			if !ok {
				if r.strict {
					return nil, fmt.Errorf("%s: %w", at, ErrKeyNotFound)
				}
				return Missing, nil
			}
			cur = child
		case Sequence:
			if !numeric {
				return nil, fmt.Errorf("%s: %w: key %q applied to a sequence", at, ErrTypeMismatch, seg)
			}
			if idx >= len(t) {
				return nil, fmt.Errorf("%s: %w: index %d, length %d", at, ErrIndexOutOfRange, idx, len(t))
			}
			cur = t[idx]
		default:
			return nil, fmt.Errorf("%s: %w: cannot descend into a %s", at, ErrTypeMismatch, kindOf(cur))
		}
	}
	if cur == nil {
		return Missing, nil
	}
	return cur, nil
}

func pathKey(prefix, segs []string) string {
	return strings.Join(append(append([]string{}, prefix...), segs...), "/")
}

func kindOf(n Node) Kind {
	if n == nil {
		return KindMissing
	}
	return n.Kind()
}

// parseIndex accepts only non-negative decimal literals.
func parseIndex(seg string) (int, bool) {
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		// Overflowing literals are still indices; no sequence is that long.
		return int(^uint(0) >> 1), true
	}
	return idx, true
}
