package extract

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rubilakse/docparse/constants"
	"github.com/rubilakse/docparse/internal/common"
	"github.com/rubilakse/docparse/internal/entity"
)

// extractSheet flattens a workbook or CSV into tab-separated lines so
// the table parser sees the same column layout it gets from PDFs.
func (e *Extractor) extractSheet(f File) (entity.RawExtraction, error) {
	if constants.NormalizeExt(filepath.Ext(f.Name)) == "csv" {
		return csvToText(f)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return entity.RawExtraction{}, common.NewAppError("SHEET_OPEN", f.Name, err)
	}
	defer func() {
		_ = wb.Close()
	}()

	var parts []string
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return entity.RawExtraction{}, common.NewAppError("SHEET_READ", sheet, err)
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		parts = append(parts, b.String())
	}

	text := strings.TrimRight(strings.Join(parts, "\n"), "\n")
	return entity.RawExtraction{
		RawText:      text,
		SpatialText:  text,
		SourceFormat: "sheet",
		Pages:        len(parts),
		Confidence:   1.0,
	}, nil
}

// csvToText normalizes separators. Croatian exports use semicolons to
// keep decimal commas intact; comma files go through a real CSV parse
// so quoted fields survive.
func csvToText(f File) (entity.RawExtraction, error) {
	text := strings.ReplaceAll(string(f.Data), "\r\n", "\n")
	if strings.Count(text, ";") > strings.Count(text, ",") {
		text = strings.ReplaceAll(text, ";", "\t")
	} else {
		r := csv.NewReader(strings.NewReader(text))
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return entity.RawExtraction{}, common.NewAppError("SHEET_READ", f.Name, err)
		}
		var b strings.Builder
		for _, rec := range records {
			b.WriteString(strings.Join(rec, "\t"))
			b.WriteByte('\n')
		}
		text = strings.TrimRight(b.String(), "\n")
	}

	return entity.RawExtraction{
		RawText:      text,
		SpatialText:  text,
		SourceFormat: "sheet",
		Pages:        1,
		Confidence:   1.0,
	}, nil
}
