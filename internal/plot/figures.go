package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/agentic-research/nomadkit/api"
	"github.com/go-git/go-billy/v5"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Energy window of the DOS panels, in eV around the Fermi level.
const (
	EnergyMin = -3.0
	EnergyMax = 3.0
)

// DOSFunc returns the energy grid (eV) and DOS of a material.
type DOSFunc func(mid string) (energies, dos []float64, err error)

// SimilarityFunc compares two DOS curves and returns similarity as a
// function of reference energy.
type SimilarityFunc func(refEnergies, refDOS, energies, dos []float64) (x, y []float64, err error)

// FingerprintInput describes the fingerprint tuning comparison figure.
type FingerprintInput struct {
	DOS        DOSFunc
	Similarity SimilarityFunc
	// AllMIDs are compared against RefMID in the right panel and fix the colours.
	AllMIDs []string
	RefMID  string
	// UpperMIDs and LowerMIDs are drawn next to the reference DOS in the
	// two stacked left panels, e.g. the most similar materials found with
	// two fingerprint settings.
	UpperMIDs []string
	LowerMIDs []string
	Width     int
	Height    int
}

// FingerprintComparison draws stacked DOS panels on the left and the
// similarity curves on the right.
func FingerprintComparison(w io.Writer, in FingerprintInput) error {
	if in.DOS == nil || in.Similarity == nil {
		return fmt.Errorf("fingerprint comparison: DOS and Similarity are required")
	}
	colors, err := NewColorMap(in.AllMIDs, "Set2", nil)
	if err != nil {
		return fmt.Errorf("fingerprint comparison: %w", err)
	}
	refE, refD, err := in.DOS(in.RefMID)
	if err != nil {
		return fmt.Errorf("fingerprint comparison: %s: %w", in.RefMID, err)
	}

	right := gplot.New()
	right.X.Label.Text = "E_ref [eV]"
	right.Y.Label.Text = "Similarity to " + Label(in.RefMID)
	right.Legend.Left = true
	for _, mid := range in.AllMIDs {
		e, d, err := in.DOS(mid)
		if err != nil {
			return fmt.Errorf("fingerprint comparison: %s: %w", mid, err)
		}
		x, y, err := in.Similarity(refE, refD, e, d)
		if err != nil {
			return fmt.Errorf("fingerprint comparison: similarity %s: %w", mid, err)
		}
		if err := addCurve(right, colors, mid, x, y); err != nil {
			return fmt.Errorf("fingerprint comparison: %w", err)
		}
	}
	right.X.Min, right.X.Max = EnergyMin, EnergyMax
	right.Y.Min, right.Y.Max = 0, 1

	panel := func(mids []string) (*gplot.Plot, error) {
		p := gplot.New()
		p.Legend.Top = true
		for _, mid := range append([]string{in.RefMID}, mids...) {
			e, d, err := in.DOS(mid)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", mid, err)
			}
			if err := addCurve(p, colors, mid, e, d); err != nil {
				return nil, err
			}
		}
		p.X.Min, p.X.Max = EnergyMin, EnergyMax
		p.Y.Min, p.Y.Max = 0, 2
		return p, nil
	}
	upper, err := panel(in.UpperMIDs)
	if err != nil {
		return fmt.Errorf("fingerprint comparison: %w", err)
	}
	lower, err := panel(in.LowerMIDs)
	if err != nil {
		return fmt.Errorf("fingerprint comparison: %w", err)
	}
	upper.X.Tick.Marker = unlabelled{gplot.DefaultTicks{}}
	upper.Y.Label.Text = "DOS [states/eV/Å²]"
	lower.X.Label.Text = "Energy [eV]"

	return writeSVG(w, in.Width, in.Height, func(dc draw.Canvas) {
		width := dc.Max.X - dc.Min.X
		left := draw.Crop(dc, 0, -width*2/5, 0, 0)
		tiles := draw.Tiles{Rows: 2, Cols: 1, PadTop: vg.Points(10), PadBottom: vg.Points(10), PadLeft: vg.Points(10)}
		panels := gplot.Align([][]*gplot.Plot{{upper}, {lower}}, tiles, left)
		upper.Draw(panels[0][0])
		lower.Draw(panels[1][0])
		right.Draw(draw.Crop(dc, width*3/5+vg.Points(20), -vg.Points(10), vg.Points(10), -vg.Points(10)))
	})
}

// unlabelled keeps the tick marks of a Ticker and drops their labels.
type unlabelled struct {
	gplot.Ticker
}

func (u unlabelled) Ticks(min, max float64) []gplot.Tick {
	ticks := u.Ticker.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}

// Convergence draws the similarity matrix above the k-point and basis
// function counts of the same calculations.
func Convergence(w io.Writer, data api.ConvergenceData, width, height int) error {
	n := len(data.Matrix)
	if n == 0 {
		return fmt.Errorf("convergence: empty similarity matrix")
	}
	for i, row := range data.Matrix {
		if len(row) != n {
			return fmt.Errorf("convergence: matrix row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	if len(data.KPoints) != len(data.NFunc) {
		return fmt.Errorf("convergence: %d k-point counts but %d basis function counts", len(data.KPoints), len(data.NFunc))
	}
	if len(data.KPoints) < 2 {
		return fmt.Errorf("convergence: need at least two calculations")
	}
	for i := range data.KPoints {
		if !(data.KPoints[i] > 0) || !(data.NFunc[i] > 0) {
			return fmt.Errorf("convergence: calculation %d: counts must be positive on a log axis", i)
		}
	}

	// Similarity coefficients are coloured on a fixed [0, 1] scale.
	cmap := moreland.Kindlmann()
	cmap.SetMin(0)
	cmap.SetMax(1)
	pal := cmap.Palette(255)
	heat := plotter.NewHeatMap(similarityGrid(data.Matrix), pal)
	heat.Min, heat.Max = 0, 1
	heat.Underflow = pal.Colors()[0]
	heat.Overflow = pal.Colors()[len(pal.Colors())-1]

	matrix := gplot.New()
	matrix.Add(heat, plotter.NewGrid())
	matrix.Y.Label.Text = "Calculation index"
	matrix.X.Min, matrix.X.Max = 0, float64(n)
	matrix.Y.Min, matrix.Y.Max = 0, float64(n)

	bar := gplot.New()
	bar.HideX()
	bar.Y.Label.Text = "Similarity coefficient"
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})

	counts := gplot.New()
	counts.X.Label.Text = "Calculation index"
	counts.Y.Scale = gplot.LogScale{}
	counts.Y.Tick.Marker = gplot.LogTicks{Prec: -1}
	counts.Legend.Top = true
	counts.Add(plotter.NewGrid())
	index := make([]float64, len(data.KPoints))
	for i := range index {
		index[i] = float64(i)
	}
	for i, s := range []struct {
		label string
		y     []float64
	}{{"N_kpt", data.KPoints}, {"N_func", data.NFunc}} {
		l, err := newLine(index, s.y, tab10[i])
		if err != nil {
			return fmt.Errorf("convergence: %s: %w", s.label, err)
		}
		counts.Add(l)
		counts.Legend.Add(s.label, l)
	}
	counts.X.Min, counts.X.Max = 0, float64(len(index)-1)

	return writeSVG(w, width, height, func(dc draw.Canvas) {
		width, height := dc.Max.X-dc.Min.X, dc.Max.Y-dc.Min.Y
		top := draw.Crop(dc, 0, 0, height/5, 0)
		barWidth := vg.Points(90)
		matrix.Draw(draw.Crop(top, 0, -barWidth, 0, 0))
		bar.Draw(draw.Crop(top, width-barWidth, 0, vg.Points(20), -vg.Points(20)))
		counts.Draw(draw.Crop(dc, 0, -width/5, 0, -height*4/5))
	})
}

// similarityGrid adapts a square matrix to plotter.GridXYZ with row 0 at
// the bottom and unit cells spanning [i, i+1].
type similarityGrid [][]float64

func (g similarityGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g similarityGrid) Z(c, r int) float64 { return g[r][c] }
func (g similarityGrid) X(c int) float64    { return float64(c) + 0.5 }
func (g similarityGrid) Y(r int) float64    { return float64(r) + 0.5 }

// Curve is one DOS curve of a comparison plot.
type Curve struct {
	MID      string
	Energies []float64
	DOS      []float64
}

// DOSComparison overlays DOS curves in the energy window.
func DOSComparison(w io.Writer, curves []Curve, width, height int) error {
	if len(curves) == 0 {
		return fmt.Errorf("dos comparison: no curves")
	}
	mids := make([]string, len(curves))
	for i, c := range curves {
		mids[i] = c.MID
	}
	colors, err := NewColorMap(mids, "Set2", nil)
	if err != nil {
		return fmt.Errorf("dos comparison: %w", err)
	}

	p := gplot.New()
	p.X.Label.Text = "Energy [eV]"
	p.Y.Label.Text = "DOS [states/eV/cell]"
	p.Legend.Top = true
	ymax := 0.0
	for _, c := range curves {
		if err := addCurve(p, colors, c.MID, c.Energies, c.DOS); err != nil {
			return fmt.Errorf("dos comparison: %w", err)
		}
		for i, e := range c.Energies {
			if e >= EnergyMin && e <= EnergyMax {
				ymax = math.Max(ymax, c.DOS[i])
			}
		}
	}
	if ymax <= 0 {
		ymax = 1
	}
	p.X.Min, p.X.Max = EnergyMin, EnergyMax
	p.Y.Min, p.Y.Max = 0, ymax*1.1

	return writeSVG(w, width, height, func(dc draw.Canvas) { p.Draw(dc) })
}

// addCurve adds a labelled line in the colour registered for mid.
func addCurve(p *gplot.Plot, colors *ColorMap, mid string, x, y []float64) error {
	c, err := colors.Color(mid)
	if err != nil {
		return err
	}
	l, err := newLine(x, y, c)
	if err != nil {
		return fmt.Errorf("%s: %w", mid, err)
	}
	p.Add(l)
	p.Legend.Add(Label(mid), l)
	return nil
}

func newLine(x, y []float64, c color.Color) (*plotter.Line, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d x values but %d y values", len(x), len(y))
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X, xys[i].Y = x[i], y[i]
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1.5)
	return l, nil
}

// writeSVG lays out a figure of width x height points and writes it to w.
func writeSVG(w io.Writer, width, height int, layout func(draw.Canvas)) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid figure size %dx%d", width, height)
	}
	c := vgsvg.New(vg.Points(float64(width)), vg.Points(float64(height)))
	layout(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// WriteFile creates name on fs and renders into it.
func WriteFile(fs billy.Filesystem, name string, render func(io.Writer) error) (err error) {
	file, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", name, cerr)
		}
	}()

	if err := render(file); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
