package main

import (
	"context"

	"github.com/spf13/cobra"

	"casync/internal/logging"
	mcpserver "casync/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing list_architectures,
select_architecture, list_artifacts, list_instances, sync_instances and
get_error_log.

The server monitors its parent process and exits when the client that
launched it goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	srv := mcpserver.NewServer(ws, version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, mcpserver.DefaultWatchInterval, cancel)

	logging.New("mcp").Info("starting casync MCP server over stdio", "vault", ws.Settings().VaultPath)
	return srv.Run(ctx)
}
