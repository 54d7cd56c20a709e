package quantity

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// SimilarityWindow compares two DOS curves in a window sliding over a range
// of reference energies.
type SimilarityWindow struct {
	// Width is the full window width in eV.
	Width float64
	// Bins is the number of bins the window is averaged into.
	Bins int
	// Min, Max and Step span the reference energies in eV.
	Min, Max, Step float64
}

// DefaultSimilarityWindow covers the plotted [-3, 3] eV range.
var DefaultSimilarityWindow = SimilarityWindow{Width: 1, Bins: 20, Min: -3, Max: 3, Step: 0.05}

// Tanimoto returns a·b / (|a|² + |b|² - a·b). Two zero vectors are
// identical and score 1.
func Tanimoto(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("tanimoto: length %d != %d", len(a), len(b))
	}
	ab := floats.Dot(a, b)
	denom := floats.Dot(a, a) + floats.Dot(b, b) - ab
	if denom == 0 {
		return 1, nil
	}
	return ab / denom, nil
}

// Bin samples dos at the centres of n equal bins of [lo, hi] by linear
// interpolation. Energies outside the grid contribute zero.
func Bin(energies, dos []float64, lo, hi float64, n int) ([]float64, error) {
	if len(energies) != len(dos) {
		return nil, fmt.Errorf("bin: %d energies but %d values", len(energies), len(dos))
	}
	if !sort.Float64sAreSorted(energies) {
		return nil, fmt.Errorf("bin: %w: energies are not ascending", ErrMalformed)
	}
	if n <= 0 || hi <= lo {
		return nil, fmt.Errorf("bin: empty range [%g, %g] with %d bins", lo, hi, n)
	}
	width := (hi - lo) / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = interpolate(energies, dos, lo+(float64(i)+0.5)*width)
	}
	return out, nil
}

func interpolate(xs, ys []float64, x float64) float64 {
	if len(xs) == 0 || x < xs[0] || x > xs[len(xs)-1] {
		return 0
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	x0, x1 := xs[i-1], xs[i]
	return ys[i-1] + (ys[i]-ys[i-1])*(x-x0)/(x1-x0)
}

// Curve returns the Tanimoto similarity of the binned DOS around each
// reference energy. Its signature fits plot.SimilarityFunc.
func (w SimilarityWindow) Curve(refEnergies, refDOS, energies, dos []float64) (x, y []float64, err error) {
	if w.Step <= 0 || w.Max < w.Min {
		return nil, nil, fmt.Errorf("similarity: invalid reference range [%g, %g] step %g", w.Min, w.Max, w.Step)
	}
	n := int(math.Round((w.Max-w.Min)/w.Step)) + 1
	x = make([]float64, n)
	if n == 1 {
		x[0] = w.Min
	} else {
		floats.Span(x, w.Min, w.Max)
	}
	y = make([]float64, n)
	for i, e := range x {
		lo, hi := e-w.Width/2, e+w.Width/2
		a, err := Bin(refEnergies, refDOS, lo, hi, w.Bins)
		if err != nil {
			return nil, nil, fmt.Errorf("similarity: reference: %w", err)
		}
		b, err := Bin(energies, dos, lo, hi, w.Bins)
		if err != nil {
			return nil, nil, fmt.Errorf("similarity: %w", err)
		}
		if y[i], err = Tanimoto(a, b); err != nil {
			return nil, nil, err
		}
	}
	return x, y, nil
}
