// Package export renders parsed documents as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rubilakse/docparse/internal/entity"
)

// Service produces XLSX bytes from parsed documents.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DocumentsXLSX returns a workbook with one summary sheet across all
// documents and one line-item sheet with every table row.
func (s *Service) DocumentsXLSX(docs []entity.ParsedDocument) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const summarySheet = "Dokumenti"
	const linesSheet = "Stavke"

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return nil, err
	}
	if idx, _ := f.GetSheetIndex(summarySheet); idx != -1 {
		f.SetActiveSheet(idx)
	}

	writeHeader(f, summarySheet, []string{
		"Datoteka",
		"Vrsta",
		"Broj",
		"Datum",
		"Prodavatelj",
		"Kupac",
		"Osnovica",
		"PDV",
		"Ukupno",
		"Valuta",
		"Metoda",
		"Pouzdanost",
	})
	writeHeader(f, linesSheet, []string{
		"Datoteka",
		"Pozicija",
		"Šifra",
		"Opis",
		"Jedinica",
		"Količina",
		"Jed. cijena",
		"Popust %",
		"Ukupno",
	})

	sumRow := 2
	lineRow := 2
	for _, doc := range docs {
		write := cellWriter(f, summarySheet, sumRow)
		write(1, doc.Source.Filename)
		write(2, string(doc.Meta.DocType))
		write(3, strOrEmpty(doc.Meta.Number))
		write(4, strOrEmpty(doc.Meta.IssueDate))
		write(5, strOrEmpty(doc.Seller.Name))
		write(6, strOrEmpty(doc.Buyer.Name))
		writeFloat(f, summarySheet, 7, sumRow, doc.Summary.Subtotal)
		writeFloat(f, summarySheet, 8, sumRow, doc.Summary.VATAmount)
		writeFloat(f, summarySheet, 9, sumRow, doc.Summary.Total)
		write(10, doc.Meta.Currency)
		write(11, string(doc.Method))
		write(12, fmt.Sprintf("%.2f", doc.Confidence))
		sumRow++

		for _, li := range doc.Lines {
			write := cellWriter(f, linesSheet, lineRow)
			write(1, doc.Source.Filename)
			write(2, li.Position)
			write(3, strOrEmpty(li.Code))
			write(4, truncate(li.Name, 180))
			write(5, strOrEmpty(li.Unit))
			writeFloat(f, linesSheet, 6, lineRow, li.Quantity)
			writeFloat(f, linesSheet, 7, lineRow, li.UnitPrice)
			writeFloat(f, linesSheet, 8, lineRow, li.DiscountPercent)
			writeFloat(f, linesSheet, 9, lineRow, li.AmountNet)
			lineRow++
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 34)
	_ = f.SetColWidth(summarySheet, "B", "D", 14)
	_ = f.SetColWidth(summarySheet, "E", "F", 30)
	_ = f.SetColWidth(summarySheet, "G", "I", 12)
	_ = f.SetColWidth(linesSheet, "A", "A", 34)
	_ = f.SetColWidth(linesSheet, "D", "D", 48)
	_ = f.SetColWidth(linesSheet, "F", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"line_rows", lineRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func writeFloat(f *excelize.File, sheet string, col, row int, v *float64) {
	if v == nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, *v)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
