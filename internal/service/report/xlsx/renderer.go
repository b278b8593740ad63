package xlsx

import (
	"bytes"
	"fmt"

	"github.com/dataservice/chat2query/internal/service/report/types"
	"github.com/xuri/excelize/v2"
)

const (
	resultSheet = "Result"
	querySheet  = "Query"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatXLSX
}

// Render builds a workbook with the result table on the first sheet and the
// question, task and SQL on a second one.
func (r *Renderer) Render(data *types.ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if data.Empty() {
		if err := f.SetCellValue(resultSheet, "A1", types.EmptyResultMessage); err != nil {
			return nil, err
		}
	} else {
		if err := r.writeRow(f, resultSheet, 1, data.Columns); err != nil {
			return nil, err
		}
		for i, row := range data.Rows {
			if err := r.writeRow(f, resultSheet, i+2, row); err != nil {
				return nil, err
			}
		}
		if err := r.styleHeader(f, len(data.Columns)); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(querySheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", querySheet, err)
	}
	details := [][]string{
		{"Question", data.Question},
		{"Task", data.Task},
		{"SQL", data.SQL},
		{"Generated", data.Generated.UTC().Format("2006-01-02 15:04:05")},
	}
	for i, row := range details {
		if err := r.writeRow(f, querySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

func (r *Renderer) styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetCellStyle(resultSheet, "A1", last+"1", style)
}
