package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the stock export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// exportSheet is the worksheet name used for XLSX exports.
const exportSheet = "Estoque"

var exportHeader = []string{"ID", "Código de Barras", "Descrição", "Quantidade"}

// ParseExportFormat accepts "csv" or "xlsx", case-insensitively.
// An empty value means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the HTTP media type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the download name for an export in this format.
func (f ExportFormat) Filename() string {
	return "estoque." + string(f)
}

// ExportStock writes every product to w.
func (s *Service) ExportStock(ctx context.Context, w io.Writer, format ExportFormat) error {
	products, err := s.catalog.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	switch format {
	case ExportXLSX:
		return WriteStockXLSX(w, products)
	default:
		return WriteStockCSV(w, products)
	}
}

// WriteStockCSV writes products as comma-separated rows with a header.
func WriteStockCSV(w io.Writer, products []Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(int64(p.ID), 10),
			p.Barcode,
			p.Description,
			strconv.FormatInt(p.Quantity, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStockXLSX writes products to a single-sheet workbook.
func WriteStockXLSX(w io.Writer, products []Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F5597"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, p := range products {
		row := r + 2
		values := []any{int64(p.ID), p.Barcode, p.Description, p.Quantity}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 20)
	_ = f.SetColWidth(exportSheet, "C", "C", 40)
	_ = f.SetColWidth(exportSheet, "D", "D", 12)

	_, err = f.WriteTo(w)
	return err
}
