package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/dataservice/chat2query/internal/service/report/types"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() types.ReportFormat {
	return types.ReportFormatCSV
}

// Render writes the header row followed by the result rows. An empty result
// becomes a single line carrying the empty-result message.
func (r *Renderer) Render(data *types.ReportData) ([]byte, error) {
	if data.Empty() {
		return r.convertRowsToCSV([][]string{{types.EmptyResultMessage}})
	}

	csvRows := make([][]string, 0, len(data.Rows)+1)
	csvRows = append(csvRows, data.Columns)
	csvRows = append(csvRows, data.Rows...)
	return r.convertRowsToCSV(csvRows)
}

func (r *Renderer) convertRowsToCSV(csvRows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	for _, row := range csvRows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buf.Bytes(), nil
}
