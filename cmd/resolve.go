package cmd

import (
	"fmt"

	"github.com/agentic-research/nomadkit/internal/docpath"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		src     source
		strict  bool
		refRoot string
		indent  int
	)
	cmd := &cobra.Command{
		Use:   "resolve PATH",
		Short: "Print the value at a path of an archive document",
		Long: `Resolve a slash-delimited path such as archive/run/0/program/name.
Numeric segments always index sequences. String values starting with #/ are
followed as in-document pointers. Absent keys print null unless --strict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := src.load(cmd.Context(), a)
			if err != nil {
				return err
			}
			r := docpath.New(docpath.Strict(strict), docpath.ReferenceRoot(refRoot))
			n, err := r.Resolve(doc, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), oj.JSON(n.Value(), &oj.Options{Indent: indent, Sort: true}))
			return err
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a key is absent")
	cmd.Flags().StringVar(&refRoot, "ref-root", "", "Path that in-document pointers are relative to (NOMAD: archive)")
	cmd.Flags().IntVar(&indent, "indent", 0, "JSON indentation")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var src source
	cmd := &cobra.Command{
		Use:     "query SELECTOR",
		Short:   "Run a JSONPath selector against an archive document",
		Example: `  nomadkit query -f entry.json '$.archive.run[*].program.name'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := src.load(cmd.Context(), a)
			if err != nil {
				return err
			}
			matches, err := docpath.Query(doc, args[0])
			if err != nil {
				return err
			}
			for _, m := range matches {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.Path, oj.JSON(m.Value, &oj.Options{Sort: true})); err != nil {
					return err
				}
			}
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
