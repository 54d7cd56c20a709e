package cmd

import (
	"fmt"

	"github.com/agentic-research/nomadkit/internal/materials"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIDsCmd(a *app) *cobra.Command {
	var (
		infile  string
		inpath  string
		comment string
	)
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Read ids from a materials database and write them to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := materials.Open(infile, inpath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ids, err := db.IDs()
			if err != nil {
				return err
			}
			a.logger.Debug("read ids", zap.String("database", db.Path()), zap.Int("count", len(ids)))

			var header *string
			if cmd.Flags().Changed("comment") {
				header = &comment
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), materials.FormatIDs(ids, header))
			return err
		},
	}

	cmd.Flags().StringVar(&infile, "input-file", "", "Materials database file to read ids from")
	cmd.Flags().StringVar(&inpath, "input-path", ".", "Directory of the database file")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment to include as the first output line")
	_ = cmd.MarkFlagRequired("input-file")
	return cmd
}
