package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// listDescriptor mirrors the catalog entry served by GET /tools.
type listDescriptor struct {
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
}

// newListCmd creates the list command.
func (a *App) newListCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd.Context(), outputJSON)
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *App) runList(ctx context.Context, outputJSON bool) error {
	endpoints := a.reg.ListEnriched(ctx)

	descriptors := make([]listDescriptor, 0, len(endpoints))
	for _, ep := range endpoints {
		descriptors = append(descriptors, listDescriptor{
			Name:        ep.Name,
			Summary:     ep.Summary,
			Description: ep.Description,
		})
	}

	if outputJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptors)
	}

	if len(descriptors) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "No endpoints registered.")
		return nil
	}
	_, _ = fmt.Fprintf(a.stdout, "Endpoints (%d):\n", len(descriptors))
	for _, d := range descriptors {
		_, _ = fmt.Fprintf(a.stdout, "\n  %s\n    %s\n", d.Name, d.Summary)
		if d.Description != "" {
			_, _ = fmt.Fprintf(a.stdout, "    %s\n", d.Description)
		}
	}
	return nil
}
