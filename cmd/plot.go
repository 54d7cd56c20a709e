package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agentic-research/nomadkit/api"
	"github.com/agentic-research/nomadkit/internal/plot"
	"github.com/agentic-research/nomadkit/internal/quantity"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPlotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render figures as SVG",
	}
	cmd.AddCommand(newPlotDOSCmd(a), newPlotFingerprintCmd(a), newPlotConvergenceCmd(a))
	return cmd
}

func newPlotDOSCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dos FILE...",
		Short: "Overlay the DOS of archive documents",
		Long: `Overlay the total DOS of one or more archive JSON files in [-3, 3] eV
around the Fermi level. Curves are labelled by the file name, which is
expected to be a material id such as ZrTe2-f7ad606317e6.json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curves, err := loadCurves(args)
			if err != nil {
				return err
			}

			err = plot.WriteFile(hostFS(out), filepath.Base(out), func(w io.Writer) error {
				return plot.DOSComparison(w, curves, a.cfg.Plot.Width, a.cfg.Plot.Height)
			})
			if err != nil {
				return err
			}
			a.logger.Info("wrote plot", zap.String("file", out), zap.Int("curves", len(curves)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dos.svg", "Output SVG file")
	return cmd
}

// loadCurves reads the DOS of archive files named after their material id.
func loadCurves(paths []string) ([]plot.Curve, error) {
	curves := make([]plot.Curve, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(hostFS(path), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		energies, err := quantity.DOSEnergies(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		dos, err := quantity.DOSValues(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		mid := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		curves = append(curves, plot.Curve{MID: mid, Energies: energies, DOS: dos})
	}
	return curves, nil
}

func newPlotFingerprintCmd(a *app) *cobra.Command {
	var (
		ref   string
		upper []string
		lower []string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "fingerprint FILE...",
		Short: "Compare DOS similarity against a reference material",
		Long: `Draw the DOS of the reference material next to two groups of materials
(--upper and --lower, e.g. the closest matches of two fingerprint settings)
and, on the right, the Tanimoto similarity of every given material to the
reference in a window sliding over [-3, 3] eV. Materials are identified by
their file names as in "plot dos".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curves, err := loadCurves(args)
			if err != nil {
				return err
			}
			byMID := make(map[string]plot.Curve, len(curves))
			mids := make([]string, 0, len(curves))
			for _, c := range curves {
				byMID[c.MID] = c
				mids = append(mids, c.MID)
			}
			if ref == "" {
				ref = mids[0]
			}

			in := plot.FingerprintInput{
				DOS: func(mid string) ([]float64, []float64, error) {
					c, ok := byMID[mid]
					if !ok {
						return nil, nil, fmt.Errorf("material %s was not given as a file", mid)
					}
					return c.Energies, c.DOS, nil
				},
				Similarity: quantity.DefaultSimilarityWindow.Curve,
				AllMIDs:    mids,
				RefMID:     ref,
				UpperMIDs:  upper,
				LowerMIDs:  lower,
				Width:      a.cfg.Plot.Width,
				Height:     a.cfg.Plot.Height,
			}
			err = plot.WriteFile(hostFS(out), filepath.Base(out), func(w io.Writer) error {
				return plot.FingerprintComparison(w, in)
			})
			if err != nil {
				return err
			}
			a.logger.Info("wrote plot", zap.String("file", out), zap.String("reference", ref), zap.Int("materials", len(mids)))
			return nil
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Reference material id (default: the first file)")
	cmd.Flags().StringSliceVar(&upper, "upper", nil, "Material ids shown in the upper DOS panel")
	cmd.Flags().StringSliceVar(&lower, "lower", nil, "Material ids shown in the lower DOS panel")
	cmd.Flags().StringVarP(&out, "out", "o", "fingerprint.svg", "Output SVG file")
	return cmd
}

func newPlotConvergenceCmd(a *app) *cobra.Command {
	var (
		input string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "Plot a similarity matrix with k-point and basis function counts",
		Long: `Read a YAML file with keys matrix (square similarity matrix), kpoints and
nfunc (one count per calculation) and draw the convergence figure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := util.ReadFile(hostFS(input), filepath.Base(input))
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			var data api.ConvergenceData
			if err := yaml.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("parse %s: %w", input, err)
			}

			err = plot.WriteFile(hostFS(out), filepath.Base(out), func(w io.Writer) error {
				return plot.Convergence(w, data, a.cfg.Plot.Width, a.cfg.Plot.Height)
			})
			if err != nil {
				return err
			}
			a.logger.Info("wrote plot", zap.String("file", out), zap.Int("calculations", len(data.KPoints)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "YAML input file")
	cmd.Flags().StringVarP(&out, "out", "o", "convergence.svg", "Output SVG file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
