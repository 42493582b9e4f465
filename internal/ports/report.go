package ports

import "update-center/internal/types"

type ReportWriterPort interface {
	WriteReport(report types.Report) error
}

type ReportReaderPort interface {
	ReadReport(path string) (types.Report, error)
}
