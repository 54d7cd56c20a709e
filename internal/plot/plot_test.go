package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/agentic-research/nomadkit/api"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorMap(t *testing.T) {
	cm, err := NewColorMap([]string{"c", "a", "b"}, "Set2", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cm.IDs())
	assert.Equal(t, 3, cm.Len())

	first, err := cm.Color("a")
	require.NoError(t, err)
	assert.Equal(t, "#66c2a5", hex(first))
	last, err := cm.Color("c")
	require.NoError(t, err)
	assert.Equal(t, "#b3b3b3", hex(last), "the last id takes the last palette colour")

	_, err = cm.Color("z")
	assert.ErrorContains(t, err, "not registered")
}

func TestColorMapOrder(t *testing.T) {
	cm, err := NewColorMap([]string{"x", "y", "z"}, "tab10", []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, cm.IDs())

	_, err = NewColorMap([]string{"x"}, "tab10", []int{1, 2})
	assert.Error(t, err)

	_, err = NewColorMap([]string{"x"}, "jet", nil)
	assert.ErrorContains(t, err, "unknown palette")
}

func TestColorMapSingleID(t *testing.T) {
	cm, err := NewColorMap([]string{"only"}, "Dark2", nil)
	require.NoError(t, err)
	c, err := cm.Color("only")
	require.NoError(t, err)
	assert.Equal(t, "#1b9e77", hex(c))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "ZrTe₂", Label("ZrTe2-f7ad606317e6"))
	assert.Equal(t, "Al₂O₃", Label("Al2O3"))
	assert.Equal(t, "Ga₂O₃", SubNumbers("Ga2O3"))
}

func TestConvergence(t *testing.T) {
	data := api.ConvergenceData{
		Matrix:  [][]float64{{1, 0.9, 0.5}, {0.9, 1, 0.7}, {0.5, 0.7, 1}},
		KPoints: []float64{8, 64, 512},
		NFunc:   []float64{300, 450, 600},
	}
	var buf bytes.Buffer
	require.NoError(t, Convergence(&buf, data, 800, 900))

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
	assert.Contains(t, svg, ">Similarity coefficient</text>")
	assert.Contains(t, svg, ">N_kpt</text>")
	assert.Contains(t, svg, ">N_func</text>")
	assert.Contains(t, svg, "<image", "colour bar")
}

func TestConvergenceClampsOutOfRangeSimilarity(t *testing.T) {
	data := api.ConvergenceData{
		Matrix:  [][]float64{{1.5, -0.2}, {-0.2, 1.5}},
		KPoints: []float64{1, 10},
		NFunc:   []float64{10, 100},
	}
	assert.NoError(t, Convergence(io.Discard, data, 600, 600))
}

func TestConvergenceRejectsBadInput(t *testing.T) {
	cases := map[string]api.ConvergenceData{
		"empty":          {},
		"not square":     {Matrix: [][]float64{{1, 2}}, KPoints: []float64{1, 2}, NFunc: []float64{1, 2}},
		"length differs": {Matrix: [][]float64{{1}}, KPoints: []float64{1, 2}, NFunc: []float64{1}},
		"single":         {Matrix: [][]float64{{1}}, KPoints: []float64{1}, NFunc: []float64{1}},
		"non positive":   {Matrix: [][]float64{{1}}, KPoints: []float64{0, 4}, NFunc: []float64{1, 2}},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, Convergence(io.Discard, data, 800, 900))
		})
	}

	ok := api.ConvergenceData{Matrix: [][]float64{{1}}, KPoints: []float64{1, 2}, NFunc: []float64{1, 2}}
	assert.ErrorContains(t, Convergence(io.Discard, ok, 0, 900), "invalid figure size")
}

func TestFingerprintComparison(t *testing.T) {
	grid := []float64{-3, -1, 0, 1, 3}
	dos := func(mid string) ([]float64, []float64, error) {
		if mid == "broken-1" {
			return nil, nil, errors.New("no dos")
		}
		return grid, []float64{0, 0.5, 1, 0.5, 0}, nil
	}
	similarity := func(_, _, e, _ []float64) ([]float64, []float64, error) {
		return e, []float64{1, 0.8, 0.6, 0.8, 1}, nil
	}

	in := FingerprintInput{
		DOS:        dos,
		Similarity: similarity,
		AllMIDs:    []string{"ZrTe2-1", "HfTe2-2", "TiSe2-3"},
		RefMID:     "ZrTe2-1",
		UpperMIDs:  []string{"HfTe2-2"},
		LowerMIDs:  []string{"TiSe2-3"},
		Width:      1500,
		Height:     800,
	}
	var buf bytes.Buffer
	require.NoError(t, FingerprintComparison(&buf, in))
	svg := buf.String()
	assert.Contains(t, svg, ">Similarity to ZrTe₂</text>")
	assert.Contains(t, svg, ">Energy [eV]</text>")
	// Legends: the similarity panel lists every material, each DOS panel
	// the reference and its own neighbours.
	assert.Equal(t, 3, strings.Count(svg, ">ZrTe₂</text>"))
	assert.Equal(t, 2, strings.Count(svg, ">HfTe₂</text>"))
	assert.Equal(t, 2, strings.Count(svg, ">TiSe₂</text>"))

	in.AllMIDs = append(in.AllMIDs, "broken-1")
	assert.ErrorContains(t, FingerprintComparison(io.Discard, in), "no dos")

	in.AllMIDs = []string{"ZrTe2-1"}
	assert.ErrorContains(t, FingerprintComparison(io.Discard, in), "not registered")
}

func TestDOSComparisonWritesFile(t *testing.T) {
	fs := memfs.New()
	curves := []Curve{
		{MID: "ZrTe2-1", Energies: []float64{-2, 0, 2}, DOS: []float64{0.1, 0.4, 0.2}},
		{MID: "HfTe2-2", Energies: []float64{-2, 0, 2}, DOS: []float64{0.3, 0.1, 0.2}},
	}
	err := WriteFile(fs, "out/dos.svg", func(w io.Writer) error {
		return DOSComparison(w, curves, 600, 400)
	})
	require.NoError(t, err)

	data, err := util.ReadFile(fs, "out/dos.svg")
	require.NoError(t, err)
	svg := string(data)
	assert.Contains(t, svg, ">HfTe₂</text>")
	assert.Contains(t, svg, ">ZrTe₂</text>")
	assert.Contains(t, svg, ">DOS [states/eV/cell]</text>")
}

func TestDOSComparisonRejectsRaggedCurve(t *testing.T) {
	curves := []Curve{{MID: "ZrTe2-1", Energies: []float64{-1, 0, 1}, DOS: []float64{1, 2}}}
	assert.ErrorContains(t, DOSComparison(io.Discard, curves, 600, 400), "3 x values but 2 y values")
	assert.ErrorContains(t, DOSComparison(io.Discard, nil, 600, 400), "no curves")
}

func TestWriteFileRenderError(t *testing.T) {
	fs := memfs.New()
	err := WriteFile(fs, "x.svg", func(io.Writer) error { return errors.New("boom") })
	assert.ErrorContains(t, err, "boom")
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
