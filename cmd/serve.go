package cmd

import (
	"github.com/agentic-research/nomadkit/internal/toolserver"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver and extractors as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			s := toolserver.NewServer(&toolserver.Tools{Archive: client, Logger: a.logger}, Version)
			a.logger.Info("serving MCP tools on stdio")
			return server.ServeStdio(s)
		},
	}
}
