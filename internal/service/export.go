package service

import (
	"bytes"
	"strings"
	"time"

	"github.com/spec-kit/visitor-access/internal/domain"
	apperrors "github.com/spec-kit/visitor-access/pkg/util/errorutil"
)

const (
	exportDateTimeLayout = "02/01/2006, 15:04:05"
	exportContentType    = "text/csv; charset=utf-8"
)

var exportHeader = []string{"Nome", "Empresa", "CPF", "Placa", "Destino", "Entrada", "Saída", "Tempo de Permanência", "Status"}

// ReportExport is a rendered report ready to be downloaded.
type ReportExport struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportReport renders the filtered report as CSV. An empty selection is
// reported as not found so callers can tell the user there is nothing to
// export.
func (s *AccessService) ExportReport(query ReportQuery) (*ReportExport, error) {
	report := s.Report(query)
	if len(report.Visits) == 0 {
		return nil, apperrors.NewNotFound("visits to export", map[string]any{
			"period": report.PeriodLabel(),
		})
	}
	now := s.clock()
	return &ReportExport{
		Filename:    ExportFilename(now.In(s.location)),
		ContentType: exportContentType,
		Data:        RenderCSV(report.Visits, now, s.location),
		Rows:        len(report.Visits),
	}, nil
}

// ExportFilename names the CSV after the export day.
func ExportFilename(day time.Time) string {
	return "relatorio_visitantes_" + day.Format("2006-01-02") + ".csv"
}

// RenderCSV writes an unquoted header followed by one fully quoted row per
// visit. Times are printed in loc; durations of open visits run up to now.
func RenderCSV(visits []domain.Visit, now time.Time, loc *time.Location) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(exportHeader, ","))
	for i := range visits {
		v := &visits[i]
		exit := ""
		if v.ExitTime != nil {
			exit = v.ExitTime.In(loc).Format(exportDateTimeLayout)
		}
		fields := []string{
			v.FullName,
			v.Company,
			domain.FormatNationalID(v.NationalID),
			domain.FormatPlate(v.Plate),
			v.Destination,
			v.EntryTime.In(loc).Format(exportDateTimeLayout),
			exit,
			v.Duration(now),
			string(v.Status()),
		}
		buf.WriteByte('\n')
		for j, f := range fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes()
}
