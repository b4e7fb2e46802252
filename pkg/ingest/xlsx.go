package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// workbook reads the first sheet of an Office Open XML spreadsheet.
type workbook struct{}

func (workbook) ID() string           { return "xlsx" }
func (workbook) Extensions() []string { return []string{"xlsx", "xlsm"} }

func (workbook) Read(in io.Reader, _ Options) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open workbook: %w", ErrMalformed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read sheet %q: %w", ErrMalformed, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sheet %q is empty", ErrMalformed, sheets[0])
	}
	// GetRows pads sheets with empty rows where cells were only formatted;
	// those are layout, not data.
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if !blank(row) {
			data = append(data, row)
		}
	}
	return rows[0], data, nil
}
