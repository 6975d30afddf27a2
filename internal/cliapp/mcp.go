package cliapp

import (
	"fmt"

	"github.com/spf13/cobra"
)

// addMCPCommands adds the commands that expose gitdb's query and sync
// engines as an MCP server, per spec §6's MCP Tool Surface.
func (app *App) addMCPCommands() {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run gitdb as an MCP server",
	}

	mcpCmd.AddCommand(&cobra.Command{
		Use:   "stdio",
		Short: "Serve the MCP tool surface over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := app.mcpServer()
			if err != nil {
				return err
			}
			return server.ServeStdio(cmd.Context())
		},
	})

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool surface over SSE",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := app.mcpServer()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			return server.ServeSSE(cmd.Context(), addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8085", "address to listen on")
	mcpCmd.AddCommand(serveCmd)

	app.rootCmd.AddCommand(mcpCmd)
}
