package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"update-center/internal/ports"
	"update-center/internal/types"
)

// ReportFileAdapter renders reports as YAML or JSON, to Path when set and
// to Out otherwise.
type ReportFileAdapter struct {
	Path   string
	Format types.ReportFormat
	Out    io.Writer
}

func NewReportFileAdapter(path string, format types.ReportFormat, out io.Writer) ReportFileAdapter {
	return ReportFileAdapter{Path: path, Format: format, Out: out}
}

func (a ReportFileAdapter) WriteReport(report types.Report) error {
	data, err := encodeReport(report, a.format())
	if err != nil {
		return err
	}
	if a.Path == "" {
		if a.Out == nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("report has neither output path nor writer")
		}
		if _, err := a.Out.Write(data); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write report").
				WithCause(err)
		}
		return nil
	}
	if dir := filepath.Dir(a.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create report directory").
				WithCause(err)
		}
	}
	if err := os.WriteFile(a.Path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write report %s", a.Path)).
			WithCause(err)
	}
	return nil
}

// ReadReport decodes a report written by WriteReport. The format follows the
// file extension.
func (a ReportFileAdapter) ReadReport(path string) (types.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("report not found: %s", path)).
			WithCause(err)
	}
	var report types.Report
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &report)
	} else {
		err = yaml.Unmarshal(data, &report)
	}
	if err != nil {
		return types.Report{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse report %s", path)).
			WithCause(err)
	}
	return report, nil
}

func (a ReportFileAdapter) format() types.ReportFormat {
	if a.Format == "" {
		return types.ReportFormatYAML
	}
	return a.Format
}

func encodeReport(report types.Report, format types.ReportFormat) ([]byte, error) {
	switch format {
	case types.ReportFormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode yaml report").
				WithCause(err)
		}
		return data, nil
	case types.ReportFormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode json report").
				WithCause(err)
		}
		return append(data, '\n'), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported report format: %s", format))
	}
}

var (
	_ ports.ReportWriterPort = ReportFileAdapter{}
	_ ports.ReportReaderPort = ReportFileAdapter{}
)
