package app

import (
	"io"
	"os"

	"update-center/internal/adapters"
	"update-center/internal/ports"
	"update-center/internal/types"
)

type Service struct {
	Catalogs  ports.CatalogSourcePort
	Installed ports.InstalledStatePort
	// Reports builds the writer used for a query result.
	Reports func(path string, format types.ReportFormat) ports.ReportWriterPort
}

func NewService() Service {
	return NewServiceWithOutput(os.Stdout)
}

// NewServiceWithOutput writes reports without an explicit path to out.
func NewServiceWithOutput(out io.Writer) Service {
	return Service{
		Catalogs:  adapters.NewCatalogFileAdapter(),
		Installed: adapters.NewInstalledFileAdapter(),
		Reports: func(path string, format types.ReportFormat) ports.ReportWriterPort {
			return adapters.NewReportFileAdapter(path, format, out)
		},
	}
}
