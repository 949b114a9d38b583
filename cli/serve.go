package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skosovsky/trident/rest"
)

// newServeCmd creates the serve command, which runs the REST adapter
// until the process receives SIGINT or SIGTERM.
func (a *App) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve endpoints over HTTP",
		Long: `Serve endpoints over HTTP.

Every endpoint is exposed as POST /rpc/{name}; the catalog is served
as GET /tools with ETag revalidation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := rest.NewServer(addr, a.reg, rest.WithLogger(a.logger))
			if a.shutdownTimeout > 0 {
				srv.ShutdownTimeout = a.shutdownTimeout
			}
			_, _ = fmt.Fprintf(a.stdout, "listening on %s\n", addr)
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.addr, "Listen address")
	return cmd
}
