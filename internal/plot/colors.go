// Package plot renders the comparison and convergence figures as SVG.
package plot

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette/brewer"
)

// tab10 is matplotlib's default line cycle; brewer has no equivalent.
var tab10 = []color.Color{
	color.RGBA{0x1f, 0x77, 0xb4, 0xff}, color.RGBA{0xff, 0x7f, 0x0e, 0xff},
	color.RGBA{0x2c, 0xa0, 0x2c, 0xff}, color.RGBA{0xd6, 0x27, 0x28, 0xff},
	color.RGBA{0x94, 0x67, 0xbd, 0xff}, color.RGBA{0x8c, 0x56, 0x4b, 0xff},
	color.RGBA{0xe3, 0x77, 0xc2, 0xff}, color.RGBA{0x7f, 0x7f, 0x7f, 0xff},
	color.RGBA{0xbc, 0xbd, 0x22, 0xff}, color.RGBA{0x17, 0xbe, 0xcf, 0xff},
}

// namedPalette returns the colours of a qualitative palette.
func namedPalette(name string) ([]color.Color, error) {
	if name == "tab10" {
		return tab10, nil
	}
	qual, ok := brewer.QualitativePalettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	largest := 0
	for n := range qual {
		largest = max(largest, n)
	}
	p, err := brewer.GetPalette(brewer.TypeQualitative, name, largest)
	if err != nil {
		return nil, fmt.Errorf("palette %q: %w", name, err)
	}
	return p.Colors(), nil
}

// ColorMap assigns each registered id a colour of a palette.
type ColorMap struct {
	ids     []string
	palette []color.Color
}

// NewColorMap registers ids under palette. Ids are sorted, or ordered by
// order when it is non-nil; order must have one value per id.
func NewColorMap(ids []string, palette string, order []int) (*ColorMap, error) {
	colors, err := namedPalette(palette)
	if err != nil {
		return nil, err
	}
	if order != nil && len(order) != len(ids) {
		return nil, fmt.Errorf("must provide as many ordering values as ids: %d != %d", len(order), len(ids))
	}

	sorted := append([]string(nil), ids...)
	if order == nil {
		sort.Strings(sorted)
	} else {
		idx := make([]int, len(ids))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return order[idx[a]] < order[idx[b]] })
		for i, j := range idx {
			sorted[i] = ids[j]
		}
	}
	return &ColorMap{ids: sorted, palette: colors}, nil
}

// IDs returns the registered ids in colour order.
func (c *ColorMap) IDs() []string { return c.ids }

// Len returns the number of registered ids.
func (c *ColorMap) Len() int { return len(c.ids) }

// Color returns the colour of id.
func (c *ColorMap) Color(id string) (color.Color, error) {
	pos := -1
	for i, v := range c.ids {
		if v == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("id %q is not registered", id)
	}
	x := 0.0
	if len(c.ids) > 1 {
		x = float64(pos) / float64(len(c.ids)-1)
	}
	i := int(x * float64(len(c.palette)))
	if i >= len(c.palette) {
		i = len(c.palette) - 1
	}
	return c.palette[i], nil
}

var subscripts = strings.NewReplacer(
	"0", "₀", "1", "₁", "2", "₂", "3", "₃", "4", "₄",
	"5", "₅", "6", "₆", "7", "₇", "8", "₈", "9", "₉",
)

// SubNumbers renders the digits of a chemical formula as subscripts.
func SubNumbers(formula string) string {
	return subscripts.Replace(formula)
}

// Label turns a material id such as "ZrTe2-f7ad606317e6" into "ZrTe₂".
func Label(mid string) string {
	formula, _, _ := strings.Cut(mid, "-")
	return SubNumbers(formula)
}
