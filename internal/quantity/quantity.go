// Package quantity turns archive documents into physical quantities.
//
// Archive values are stored in SI units; energies are reported in eV.
package quantity

import (
	"errors"
	"fmt"
	"math"

	"github.com/agentic-research/nomadkit/api"
	"github.com/agentic-research/nomadkit/internal/docpath"
)

// ElectronVolt is one eV in Joule.
const ElectronVolt = 1.602176634e-19

// ErrMalformed is wrapped when a field exists but has the wrong shape.
var ErrMalformed = errors.New("malformed archive")

// resolver is strict: every extractor needs its fields.
var resolver = docpath.New(docpath.Strict(true), docpath.ReferenceRoot(api.ArchiveRoot))

// lenient serves optional fields.
var lenient = docpath.New(docpath.ReferenceRoot(api.ArchiveRoot))

// DOSValues returns the total density of states per unit cell and eV,
// summed over spin channels.
func DOSValues(doc docpath.Node) ([]float64, error) {
	channels, err := resolver.Follow(doc, api.DOSTotal)
	if err != nil {
		return nil, fmt.Errorf("dos values: %w", err)
	}
	seq, ok := channels.(docpath.Sequence)
	if !ok {
		seq = docpath.Sequence{channels}
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("dos values: %w: no spin channels", ErrMalformed)
	}

	var total []float64
	for i, ch := range seq {
		norm := 1.0
		if n, err := lenient.Resolve(ch, api.ChannelNormalization); err == nil && !docpath.IsMissing(n) {
			if norm, err = Float(n); err != nil {
				return nil, fmt.Errorf("dos values: channel %d: %w", i, err)
			}
		}
		raw, err := resolver.Resolve(ch, api.ChannelValue)
		if err != nil {
			return nil, fmt.Errorf("dos values: channel %d: %w", i, err)
		}
		values, err := Floats(raw)
		if err != nil {
			return nil, fmt.Errorf("dos values: channel %d: %w", i, err)
		}

		if total == nil {
			total = make([]float64, len(values))
		} else if len(values) != len(total) {
			return nil, fmt.Errorf("dos values: %w: channel %d has %d points, expected %d",
				ErrMalformed, i, len(values), len(total))
		}
		for j, v := range values {
			total[j] += v * norm * ElectronVolt
		}
	}
	return total, nil
}

// DOSEnergies returns the DOS energy grid in eV relative to the Fermi level.
func DOSEnergies(doc docpath.Node) ([]float64, error) {
	grid, err := resolver.Follow(doc, api.DOSEnergies)
	if err != nil {
		return nil, fmt.Errorf("dos energies: %w", err)
	}
	energies, err := Floats(grid)
	if err != nil {
		return nil, fmt.Errorf("dos energies: %w", err)
	}
	fermiNode, err := resolver.Resolve(doc, api.DOSFermiEnergy)
	if err != nil {
		return nil, fmt.Errorf("dos energies: %w", err)
	}
	fermi, err := Float(fermiNode)
	if err != nil {
		return nil, fmt.Errorf("dos energies: fermi energy: %w", err)
	}

	out := make([]float64, len(energies))
	for i, e := range energies {
		out[i] = (e - fermi) / ElectronVolt
	}
	return out, nil
}

// BandGap returns the smallest band gap over spin channels in eV.
func BandGap(doc docpath.Node) (float64, error) {
	node, err := resolver.Resolve(doc, api.DOSBandGap)
	if err != nil {
		return 0, fmt.Errorf("band gap: %w", err)
	}
	channels, ok := node.(docpath.Sequence)
	if !ok {
		return 0, fmt.Errorf("band gap: %w: expected a sequence of channels, found %s", ErrMalformed, node.Kind())
	}
	if len(channels) == 0 {
		return 0, fmt.Errorf("band gap: %w: no channels", ErrMalformed)
	}

	gap := math.Inf(1)
	for i, ch := range channels {
		lumo, err := floatAt(ch, api.GapLowestUnoccupied)
		if err != nil {
			return 0, fmt.Errorf("band gap: channel %d: %w", i, err)
		}
		homo, err := floatAt(ch, api.GapHighestOccupied)
		if err != nil {
			return 0, fmt.Errorf("band gap: channel %d: %w", i, err)
		}
		gap = math.Min(gap, (lumo-homo)/ElectronVolt)
	}
	return gap, nil
}

// FHIAimsBasisFunctions counts the basis functions of an FHI-aims run over
// all species.
func FHIAimsBasisFunctions(doc docpath.Node) (int, error) {
	node, err := resolver.Resolve(doc, api.FHIAimsAtomParameters)
	if err != nil {
		return 0, fmt.Errorf("basis functions: %w", err)
	}
	species, ok := node.(docpath.Sequence)
	if !ok {
		return 0, fmt.Errorf("basis functions: %w: atom_parameters is a %s", ErrMalformed, node.Kind())
	}

	n := 0
	for i, params := range species {
		funcs, err := resolver.Resolve(params, api.FHIAimsBasisFunctions)
		if err != nil {
			return 0, fmt.Errorf("basis functions: species %d: %w", i, err)
		}
		seq, ok := funcs.(docpath.Sequence)
		if !ok {
			return 0, fmt.Errorf("basis functions: species %d: %w: expected a sequence", i, ErrMalformed)
		}
		n += len(seq)
	}
	return n, nil
}

func floatAt(n docpath.Node, path string) (float64, error) {
	v, err := resolver.Resolve(n, path)
	if err != nil {
		return 0, err
	}
	return Float(v)
}

// Float reads a numeric scalar.
func Float(n docpath.Node) (float64, error) {
	s, ok := n.(docpath.Scalar)
	if !ok {
		return 0, fmt.Errorf("%w: expected a number, found %s", ErrMalformed, n.Kind())
	}
	switch v := s.V.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: expected a number, found %T", ErrMalformed, s.V)
	}
}

// Floats reads a sequence of numeric scalars.
func Floats(n docpath.Node) ([]float64, error) {
	seq, ok := n.(docpath.Sequence)
	if !ok {
		return nil, fmt.Errorf("%w: expected a sequence, found %s", ErrMalformed, n.Kind())
	}
	out := make([]float64, len(seq))
	for i, item := range seq {
		f, err := Float(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
