package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"

	exportSheet = "Aufträge"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var exportHeaders = []interface{}{
	"ID", "Mitarbeiter", "E-Mail", "Bereich", "Art", "Status", "Erstellt am", "Auftrag MA",
	"Gültig ab", "Befristet bis", "Services", "Bearbeitet von", "Bearbeitet am", "Kommentar",
}

func exportRow(o dto.OrderDTO) []interface{} {
	processedAt := ""
	if o.ProcessedAt != nil {
		processedAt = o.ProcessedAt.Format("2006-01-02 15:04")
	}
	return []interface{}{
		o.ID, o.EmployeeName, utils.SafeDeref(o.EmployeeEmail), utils.SafeDeref(o.Department), o.Type, o.Status,
		o.CreatedAt.Format("2006-01-02 15:04"), o.AuftragMA, utils.SafeDeref(o.EffectiveDate),
		utils.SafeDeref(o.LimitedUntil), strings.Join(o.Services, ", "), utils.SafeDeref(o.ProcessedBy),
		processedAt, utils.SafeDeref(o.Notes),
	}
}

func (s *OrderService) Export(ctx context.Context, query repositories.OrderQuery, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, apperrors.NewValidationError("format", "must be xlsx or csv")
	}

	orders, _, err := s.List(ctx, query, types.Filter{})
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("auftraege_%s.%s", s.now().Format("2006-01-02"), format)
	if format == ExportFormatCSV {
		data, err := renderCSV(orders)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Name: name, ContentType: "text/csv; charset=utf-8", Data: data}, nil
	}

	data, err := renderXLSX(orders)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:        name,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

var exportColumnWidths = []struct {
	from, to string
	width    float64
}{
	{"B", "D", 25},
	{"K", "K", 35},
	{"N", "N", 50},
}

func renderXLSX(orders []dto.OrderDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeaders))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(o)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	for _, w := range exportColumnWidths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("set width of %s:%s: %w", w.from, w.to, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderCSV writes ';' separated records with a header line.
func renderCSV(orders []dto.OrderDTO) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	record := make([]string, len(exportHeaders))
	for i, h := range exportHeaders {
		record[i] = fmt.Sprint(h)
	}
	if err := w.Write(record); err != nil {
		return nil, err
	}
	for _, o := range orders {
		for i, v := range exportRow(o) {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
