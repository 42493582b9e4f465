package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"update-center/internal/app"
)

type validateOptions struct {
	Strict bool
}

func newValidateCommand(opts *queryOptions) *cobra.Command {
	local := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog and build its dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts, local)
		},
	}
	cmd.Flags().BoolVar(&local.Strict, "strict", false, "Fail on unresolved requirements instead of dropping them")
	_ = viper.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts *queryOptions, local validateOptions) error {
	service := newAppService(cmd)
	result, err := service.Validate(ctx, app.ValidateRequest{
		CatalogPath: opts.catalogPath(cmd),
		Strict:      resolveBool(cmd, local.Strict, "strict", "strict"),
	})
	if err != nil {
		return err
	}
	printf(cmd, "validated: %s (%d artifacts, %d releases, %d warnings)\n",
		result.HostKey, result.Artifacts, result.Releases, len(result.Warnings))
	return nil
}
