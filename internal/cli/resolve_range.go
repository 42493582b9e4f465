package cli

import (
	"context"

	"github.com/spf13/cobra"

	"update-center/internal/app"
)

type resolveRangeOptions struct {
	Artifact string
}

func newResolveRangeCommand(opts *queryOptions) *cobra.Command {
	local := resolveRangeOptions{}
	cmd := &cobra.Command{
		Use:   "resolve-range <expression>",
		Short: "Expand a host version expression against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolveRange(cmd.Context(), cmd, opts, local, args[0])
		},
	}
	cmd.Flags().StringVar(&local.Artifact, "artifact", "", "Artifact named in error messages")
	return cmd
}

func runResolveRange(ctx context.Context, cmd *cobra.Command, opts *queryOptions, local resolveRangeOptions, expression string) error {
	service := newAppService(cmd)
	report, err := service.ResolveRange(ctx, app.ResolveRangeRequest{
		CatalogPath: opts.catalogPath(cmd),
		Product:     opts.product(cmd),
		Expression:  expression,
		ArtifactKey: local.Artifact,
	})
	if err != nil {
		return err
	}
	return writeReport(cmd, service, opts, report)
}
