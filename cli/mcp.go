package cli

import (
	"github.com/spf13/cobra"

	"github.com/skosovsky/trident/mcpserver"
)

// newMCPCmd creates the mcp command, which speaks the Model Context
// Protocol over stdio until the client disconnects or the process
// receives SIGINT or SIGTERM.
func (a *App) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve endpoints to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcpserver.New(a.reg,
				mcpserver.Config{Name: a.name, Version: a.version},
				mcpserver.WithLogger(a.logger),
			)
			defer srv.Close()
			return srv.Run(cmd.Context())
		},
	}
}
