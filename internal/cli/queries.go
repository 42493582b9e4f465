package cli

import (
	"context"

	"github.com/spf13/cobra"

	"update-center/internal/app"
	"update-center/internal/types"
)

type reportQuery func(service app.Service, ctx context.Context, req app.QueryRequest) (types.Report, error)

func newQueryCommand(use string, short string, opts *queryOptions, query reportQuery) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd.Context(), cmd, opts, query)
		},
	}
}

func runQuery(ctx context.Context, cmd *cobra.Command, opts *queryOptions, query reportQuery) error {
	req, err := opts.request(cmd)
	if err != nil {
		return err
	}
	service := newAppService(cmd)
	report, err := query(service, ctx, req)
	if err != nil {
		return err
	}
	return writeReport(cmd, service, opts, report)
}

func newAvailableCommand(opts *queryOptions) *cobra.Command {
	return newQueryCommand("available", "List extensions that can be installed", opts, app.Service.Available)
}

func newUpgradesCommand(opts *queryOptions) *cobra.Command {
	return newQueryCommand("upgrades", "List upgrades of installed extensions", opts, app.Service.Upgrades)
}

func newHostUpgradesCommand(opts *queryOptions) *cobra.Command {
	return newQueryCommand("host-upgrades", "List host upgrades and their impact on installed extensions", opts, app.Service.HostUpgrades)
}

type installSetOptions struct {
	MinVersion string
}

func newInstallSetCommand(opts *queryOptions) *cobra.Command {
	local := installSetOptions{}
	cmd := &cobra.Command{
		Use:   "install-set <artifact>",
		Short: "List every release to install for one extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			service := newAppService(cmd)
			report, err := service.InstallSet(cmd.Context(), app.InstallSetRequest{
				QueryRequest: req,
				Key:          args[0],
				MinVersion:   local.MinVersion,
			})
			if err != nil {
				return err
			}
			return writeReport(cmd, service, opts, report)
		},
	}
	cmd.Flags().StringVar(&local.MinVersion, "min-version", "", "Minimum acceptable version")
	return cmd
}

func newRemovableCommand(opts *queryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "removable <artifact>",
		Short: "List installed extensions removed together with one extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			service := newAppService(cmd)
			report, err := service.Removable(cmd.Context(), app.RemovableRequest{QueryRequest: req, Key: args[0]})
			if err != nil {
				return err
			}
			return writeReport(cmd, service, opts, report)
		},
	}
}
