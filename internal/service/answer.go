package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/internal/service/report"
	"github.com/dataservice/chat2query/internal/service/report/types"
)

// Answer is a terminal question job ready for display: either a table or a
// single error message.
type Answer struct {
	JobID       string              `json:"jobId,omitempty"`
	Status      client.JobStatus    `json:"status,omitempty"`
	Task        string              `json:"task,omitempty"`
	SQL         string              `json:"sql,omitempty"`
	Columns     []string            `json:"columns"`
	Rows        [][]any             `json:"rows"`
	Empty       bool                `json:"empty"`
	Message     string              `json:"message,omitempty"`
	Error       string              `json:"error,omitempty"`
	Description string              `json:"description,omitempty"`
	Assumptions []client.Assumption `json:"assumptions,omitempty"`
}

func (a *Answer) Failed() bool {
	return a.Error != ""
}

// NormalizeAsk maps a terminal question job to an Answer.
//
// A failure is reported when either the job or the task inside it failed.
// The job-level reason wins over the task-level sql_error.
func NormalizeAsk(job *client.AskJob) Answer {
	answer := Answer{
		JobID:   job.ID,
		Status:  job.Status,
		Columns: []string{},
		Rows:    [][]any{},
	}

	result := job.Answer
	if result == nil && job.HasResult() {
		var decoded client.AskResult
		if err := json.Unmarshal(job.Result, &decoded); err == nil {
			result = &decoded
		}
	}

	if job.Status == client.JobStatusFailed || (result != nil && result.Status == client.JobStatusFailed) {
		answer.Error = failureMessage(job, result)
		return answer
	}

	if result == nil {
		answer.Empty = true
		answer.Message = types.EmptyResultMessage
		return answer
	}

	answer.Task = result.ClarifiedTask
	answer.SQL = result.SQL
	answer.Description = result.Description
	answer.Assumptions = result.Assumptions
	answer.Columns = result.ColumnNames()
	if result.Data.Rows != nil {
		answer.Rows = result.Data.Rows
	}
	if len(answer.Columns) == 0 || len(answer.Rows) == 0 {
		answer.Empty = true
		answer.Message = types.EmptyResultMessage
	}
	return answer
}

func failureMessage(job *client.AskJob, result *client.AskResult) string {
	if job.Reason != "" {
		return job.Reason
	}
	if result != nil && result.SQLError != nil && *result.SQLError != "" {
		return *result.SQLError
	}
	return fmt.Sprintf("job %s failed", job.ID)
}

// ApplicationFailureAnswer turns an envelope failure into a displayable answer.
func ApplicationFailureAnswer(failure *client.ApplicationFailure) Answer {
	return Answer{
		Columns: []string{},
		Rows:    [][]any{},
		Error:   failure.Message,
	}
}

func (a *Answer) ReportData(question string, generated time.Time) *types.ReportData {
	return &types.ReportData{
		Question:  question,
		Task:      a.Task,
		SQL:       a.SQL,
		Columns:   a.Columns,
		Rows:      report.Rows(a.Rows),
		Generated: generated,
	}
}

// Export renders the answer in the format matching filename's extension.
func (a *Answer) Export(question, filename string, generated time.Time) ([]byte, error) {
	format, err := report.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(a.ReportData(question, generated))
}
