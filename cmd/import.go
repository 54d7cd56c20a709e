package cmd

import (
	"fmt"

	"github.com/agentic-research/nomadkit/internal/materials"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		dbPath  string
		entries []string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Fetch entry archives and store them in a materials database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := materials.Create(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			client, err := a.client()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			for _, id := range entries {
				doc, err := client.Archive(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := db.Put(id, doc); err != nil {
					return err
				}
				a.logger.Info("imported entry", zap.String("entry_id", id), zap.String("database", dbPath))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s\n", len(entries), dbPath)
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Materials database to write (created if absent)")
	cmd.Flags().StringSliceVar(&entries, "entry", nil, "Entry id to fetch (repeatable)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}
