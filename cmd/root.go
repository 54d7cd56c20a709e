package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/nomadkit/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time.
var Version = "dev"

// app carries the state shared by subcommands of one invocation.
type app struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "nomadkit",
		Short: "Materials database and NOMAD archive utilities",
		Long: `nomadkit dumps ids from a local materials database, resolves paths in
NOMAD archive documents, extracts physical quantities from them and renders
comparison and convergence plots as SVG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if a.verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			a.logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.cfg, err = config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.logger.Debug("configuration loaded",
				zap.String("path", a.configPath),
				zap.String("base_url", a.cfg.Archive.BaseURL))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Path to the HCL configuration file")

	root.AddCommand(
		newIDsCmd(a),
		newResolveCmd(a),
		newQueryCmd(a),
		newExtractCmd(a),
		newImportCmd(a),
		newPlotCmd(a),
		newServeCmd(a),
	)
	root.Version = Version
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
