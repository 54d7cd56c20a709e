package cmd

import (
	"fmt"
	"strings"

	"github.com/agentic-research/nomadkit/internal/quantity"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		src            source
		energyVariant  string
		kpointsVariant string
		format         string
	)
	cmd := &cobra.Command{
		Use:   "extract QUANTITY",
		Short: "Compute a physical quantity from an archive document",
		Long: fmt.Sprintf(`Compute one of: %s.

Energies are reported in eV, the DOS in states per eV and unit cell.
The k-point grid is read from the raw control.in (control-in) or from the
parsed k_mesh section (parsed), depending on the schema version.`, strings.Join(quantity.Names(), ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: quantity.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := src.load(cmd.Context(), a)
			if err != nil {
				return err
			}

			opts := quantity.Options{
				Energy:  quantity.EnergyVariant(energyVariant),
				KPoints: quantity.KPointsVariant(kpointsVariant),
			}
			if opts.KPoints == quantity.KPointsFromControlIn && args[0] == "kpoints" {
				client, err := a.client()
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				opts.Fetcher = client
			}

			v, err := quantity.Extract(cmd.Context(), doc, args[0], opts)
			if err != nil {
				return err
			}
			a.logger.Debug("extracted", zap.String("quantity", args[0]))
			return writeValue(cmd, format, map[string]any{args[0]: v})
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&energyVariant, "energy-variant", string(quantity.EnergyFromWorkflow), "Total energy source: workflow or last-calculation")
	cmd.Flags().StringVar(&kpointsVariant, "kpoints-variant", string(quantity.KPointsFromControlIn), "K-point source: control-in or parsed")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format: json or yaml")
	return cmd
}

func writeValue(cmd *cobra.Command, format string, v any) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		_, err := fmt.Fprintln(out, oj.JSON(v, &oj.Options{Sort: true}))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
