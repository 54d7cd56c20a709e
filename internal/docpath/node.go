// Package docpath resolves slash-delimited path expressions against archive
// documents.
//
// Documents are converted once into a tagged union of Mapping, Sequence and
// Scalar nodes so traversal never has to inspect arbitrary Go values.
package docpath

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg/oj"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindMissing:
		return "missing"
	default:
		return "scalar"
	}
}

// Node is one value of an archive document.
type Node interface {
	Kind() Kind
	// Value converts the node back into plain Go values
	// (map[string]any, []any, scalars).
	Value() any
}

// Mapping is a string-keyed node.
type Mapping map[string]Node

func (Mapping) Kind() Kind { return KindMapping }

func (m Mapping) Value() any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Value()
	}
	return out
}

// Keys returns the mapping keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sequence is an ordered node.
type Sequence []Node

func (Sequence) Kind() Kind { return KindSequence }

func (s Sequence) Value() any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v.Value()
	}
	return out
}

// Scalar wraps a terminal value: string, int64, float64, bool or nil.
type Scalar struct {
	V any
}

func (Scalar) Kind() Kind { return KindScalar }

func (s Scalar) Value() any { return s.V }

// String returns the scalar as a string and whether it is one.
func (s Scalar) String() (string, bool) {
	str, ok := s.V.(string)
	return str, ok
}

type missing struct{}

func (missing) Kind() Kind { return KindMissing }
func (missing) Value() any { return nil }

// Missing is returned by lenient resolution when a key is absent.
var Missing Node = missing{}

// IsMissing reports whether n is the Missing sentinel.
func IsMissing(n Node) bool {
	return n == nil || n.Kind() == KindMissing
}

// FromValue converts decoded JSON into a Node tree.
func FromValue(v any) (Node, error) {
	switch t := v.(type) {
	case Node:
		return t, nil
	case map[string]any:
		m := make(Mapping, len(t))
		for k, child := range t {
			n, err := FromValue(child)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = n
		}
		return m, nil
	case []any:
		s := make(Sequence, len(t))
		for i, child := range t {
			n, err := FromValue(child)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			s[i] = n
		}
		return s, nil
	case nil, string, bool, int64, float64:
		return Scalar{V: t}, nil
	case int:
		return Scalar{V: int64(t)}, nil
	case int32:
		return Scalar{V: int64(t)}, nil
	case float32:
		return Scalar{V: float64(t)}, nil
	case []string:
		s := make(Sequence, len(t))
		for i, str := range t {
			s[i] = Scalar{V: str}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported document value of type %T", v)
	}
}

// MustFromValue is FromValue for literals known to be valid.
func MustFromValue(v any) Node {
	n, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return n
}

// Parse decodes JSON text into a Node tree.
func Parse(data []byte) (Node, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return FromValue(v)
}
