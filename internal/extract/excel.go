package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spherical/docqa/internal/domain"
)

// ExcelStrategy extracts excel-modern (.xlsx) workbooks, one block per sheet.
type ExcelStrategy struct {
	opts excelize.Options
}

// NewExcelStrategy creates an xlsx strategy.
func NewExcelStrategy() *ExcelStrategy {
	return &ExcelStrategy{opts: excelize.Options{
		UnzipSizeLimit:    maxEntryBytes * 4,
		UnzipXMLSizeLimit: maxEntryBytes,
	}}
}

// Extract implements domain.Strategy.
func (s *ExcelStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), s.opts)
	if err != nil {
		return "", domain.ExtractionError("cannot open Excel workbook", err)
	}
	defer f.Close()

	var blocks []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", domain.ExtractionError("Excel extraction cancelled", err)
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("cannot read sheet %q", sheet), err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			row = trimTrailingEmpty(row)
			if len(row) == 0 {
				continue
			}
			lines = append(lines, strings.Join(row, "\t"))
		}
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, "Sheet: "+sheet+"\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}
