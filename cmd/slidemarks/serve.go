package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/slidemarks/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Starts a Model Context Protocol server speaking JSON-RPC over stdio.

The configuration file and SLIDEMARKS_* environment variables supply the
defaults for every tool call. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Str("version", Version).Str("commit", GitCommit).Str("built", BuildTime).Msg("starting MCP server")
			return server.New(cfg).Run(cmd.Context())
		},
	}
}
