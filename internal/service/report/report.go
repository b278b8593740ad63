package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dataservice/chat2query/internal/service/report/csv"
	"github.com/dataservice/chat2query/internal/service/report/html"
	"github.com/dataservice/chat2query/internal/service/report/types"
	"github.com/dataservice/chat2query/internal/service/report/xlsx"
)

var renderers = map[types.ReportFormat]types.ReportRenderer{}

func init() {
	for _, r := range []types.ReportRenderer{csv.NewRenderer(), html.NewRenderer(), xlsx.NewRenderer()} {
		renderers[r.SupportedFormat()] = r
	}
}

func NewRenderer(format types.ReportFormat) (types.ReportRenderer, error) {
	r, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	return r, nil
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(filename string) (types.ReportFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	format := types.ReportFormat(ext)
	if _, ok := renderers[format]; !ok {
		return "", fmt.Errorf("cannot export to %q: supported extensions are .csv, .html and .xlsx", filename)
	}
	return format, nil
}

// CellString renders a result cell the way it is displayed. Cells are decoded
// from JSON, so numbers arrive as float64 and nested values as maps or slices.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool, int, int64:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func Rows(rows [][]any) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, CellString(cell))
		}
		out = append(out, cells)
	}
	return out
}
