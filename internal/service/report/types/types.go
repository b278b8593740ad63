package types

import "time"

type ReportRenderer interface {
	Render(data *ReportData) ([]byte, error)
	SupportedFormat() ReportFormat
}

type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatHTML ReportFormat = "html"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ReportData is one answered question flattened to strings.
type ReportData struct {
	Question  string
	Task      string
	SQL       string
	Columns   []string
	Rows      [][]string
	Generated time.Time
}

func (d *ReportData) Empty() bool {
	return len(d.Columns) == 0 || len(d.Rows) == 0
}

const EmptyResultMessage = "No data found with this query"
