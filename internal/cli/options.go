package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"update-center/internal/app"
	"update-center/internal/core"
	"update-center/internal/types"
)

// queryOptions are the persistent flags shared by every query command.
type queryOptions struct {
	Catalog         string
	Installed       string
	HostVersion     string
	Product         string
	Extensions      []string
	IncludeArchived bool
	Format          string
	Output          string
}

func (o *queryOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.Catalog, "catalog", "", "Update center catalog file")
	flags.StringVar(&o.Installed, "installed", "", "Installed state file")
	flags.StringVar(&o.HostVersion, "host-version", "", "Installed host version (overrides installed state)")
	flags.StringVar(&o.Product, "product", "", "Host product line (sqVersions, sqcb, sqs)")
	flags.StringSliceVar(&o.Extensions, "extension", nil, "Installed extension as key:version (repeatable)")
	flags.BoolVar(&o.IncludeArchived, "include-archived", false, "Offer archived and non-public releases")
	flags.StringVar(&o.Format, "format", string(types.ReportFormatYAML), "Report format (yaml, json)")
	flags.StringVar(&o.Output, "output", "", "Report file (stdout when empty)")

	_ = viper.BindPFlag("catalog", flags.Lookup("catalog"))
	_ = viper.BindPFlag("installed", flags.Lookup("installed"))
	_ = viper.BindPFlag("host_version", flags.Lookup("host-version"))
	_ = viper.BindPFlag("product", flags.Lookup("product"))
	_ = viper.BindPFlag("extensions", flags.Lookup("extension"))
	_ = viper.BindPFlag("include_archived", flags.Lookup("include-archived"))
	_ = viper.BindPFlag("format", flags.Lookup("format"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
}

func (o *queryOptions) catalogPath(cmd *cobra.Command) string {
	return resolveString(cmd, o.Catalog, "catalog", "catalog")
}

func (o *queryOptions) product(cmd *cobra.Command) types.ProductLine {
	return types.ProductLine(resolveString(cmd, o.Product, "product", "product"))
}

func (o *queryOptions) request(cmd *cobra.Command) (app.QueryRequest, error) {
	extensions, err := parseExtensions(resolveStrings(cmd, o.Extensions, "extensions", "extension"))
	if err != nil {
		return app.QueryRequest{}, err
	}
	return app.QueryRequest{
		CatalogPath:     o.catalogPath(cmd),
		InstalledPath:   resolveString(cmd, o.Installed, "installed", "installed"),
		HostVersion:     resolveString(cmd, o.HostVersion, "host_version", "host-version"),
		Product:         o.product(cmd),
		Extensions:      extensions,
		IncludeArchived: resolveBool(cmd, o.IncludeArchived, "include_archived", "include-archived"),
	}, nil
}

func (o *queryOptions) output(cmd *cobra.Command) app.OutputRequest {
	return app.OutputRequest{
		Path:   resolveString(cmd, o.Output, "output", "output"),
		Format: types.ReportFormat(resolveString(cmd, o.Format, "format", "format")),
	}
}

func parseExtensions(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		requirement, err := core.ParseRequirement(entry, "--extension")
		if err != nil {
			return nil, err
		}
		out[requirement.Key] = requirement.MinVersion
	}
	return out, nil
}

func writeReport(cmd *cobra.Command, service app.Service, opts *queryOptions, report types.Report) error {
	return service.WriteReport(opts.output(cmd), report)
}

func newAppService(cmd *cobra.Command) app.Service {
	return app.NewServiceWithOutput(cmd.OutOrStdout())
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.InheritedFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
