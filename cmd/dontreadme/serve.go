package main

import (
	"github.com/dusk-indust/dontreadme/internal/graph"
	"github.com/dusk-indust/dontreadme/internal/mcptools"
	"github.com/spf13/cobra"
)

func newServeMCPCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the analyses as MCP tools over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), flags.verbose, flags.logFormat)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := graph.Open(ctx, "")
			if err != nil {
				return err
			}
			defer store.Close()

			svc := mcptools.NewService(store, logger)
			svc.PersistIndex = true
			mcptools.Version = version
			server := mcptools.NewServer(svc)

			if addr != "" {
				logger.Info("serving MCP over HTTP", "addr", addr)
				return mcptools.RunHTTP(ctx, server, addr)
			}
			logger.Debug("serving MCP over stdio")
			return mcptools.RunStdio(ctx, server)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}
