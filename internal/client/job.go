package client

import (
	"encoding/json"
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusInit    JobStatus = "init"
	JobStatusRunning JobStatus = "running"
	JobStatusFailed  JobStatus = "failed"
	JobStatusDone    JobStatus = "done"
)

// IsValid reports whether s is one of the statuses the service emits.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusInit, JobStatusRunning, JobStatusFailed, JobStatusDone:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions can happen.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Job is the status record of a unit of asynchronous remote work.
// Result stays raw until the job is done; typed helpers decode it.
type Job struct {
	ID      string          `json:"job_id"`
	Status  JobStatus       `json:"status"`
	Reason  string          `json:"reason,omitempty"`
	EndedAt int64           `json:"ended_at,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// Ended returns the time the job reached a terminal status, or the zero time.
func (j *Job) Ended() time.Time {
	if j.EndedAt == 0 {
		return time.Time{}
	}
	return time.Unix(j.EndedAt, 0)
}

// HasResult is true when the service attached a non-null payload.
func (j *Job) HasResult() bool {
	return len(j.Result) > 0 && string(j.Result) != "null"
}

// Decode unmarshals the job payload into v. It fails when the job is not done.
func (j *Job) Decode(v any) error {
	if j.Status != JobStatusDone {
		return fmt.Errorf("job %s has no result in status %q", j.ID, j.Status)
	}
	if !j.HasResult() {
		return fmt.Errorf("job %s is done but carries no result", j.ID)
	}
	if err := json.Unmarshal(j.Result, v); err != nil {
		return fmt.Errorf("decoding result of job %s: %w", j.ID, err)
	}
	return nil
}

// Err returns an ApplicationFailure for a failed job and nil otherwise.
func (j *Job) Err() error {
	if j.Status != JobStatusFailed {
		return nil
	}
	msg := j.Reason
	if msg == "" {
		msg = fmt.Sprintf("job %s failed", j.ID)
	}
	return &ApplicationFailure{JobID: j.ID, Message: msg}
}

// envelope is the response wrapper used by every endpoint of the service.
type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

type submission struct {
	JobID string `json:"job_id"`
}

// Target is the database a task runs against.
type Target struct {
	ClusterID string `json:"cluster_id"`
	Database  string `json:"database"`
}

// Task describes a job the remote service can run.
type Task interface {
	// Endpoint is the path of the create-job endpoint.
	Endpoint() string
	// Payload builds the request body for the given target.
	Payload(target Target) any
}

type SQLGenerateMode string

const SQLGenerateModeDirect SQLGenerateMode = "direct"

// Chat2DataTask asks a natural-language question against the target database.
type Chat2DataTask struct {
	Question string
	Mode     SQLGenerateMode
}

func (t Chat2DataTask) Endpoint() string { return "/v3/chat2data" }

func (t Chat2DataTask) Payload(target Target) any {
	mode := t.Mode
	if mode == "" {
		mode = SQLGenerateModeDirect
	}
	return struct {
		Target
		Question        string          `json:"question"`
		SQLGenerateMode SQLGenerateMode `json:"sql_generate_mode"`
	}{Target: target, Question: t.Question, SQLGenerateMode: mode}
}

// DataSummaryTask asks the service to summarize the target database schema.
type DataSummaryTask struct {
	Reuse       bool
	Default     bool
	Description string
}

func NewDataSummaryTask() DataSummaryTask {
	return DataSummaryTask{Reuse: true, Default: true}
}

func (t DataSummaryTask) Endpoint() string { return "/v3/dataSummaries" }

func (t DataSummaryTask) Payload(target Target) any {
	return struct {
		Target
		Reuse       bool   `json:"reuse"`
		Default     bool   `json:"default"`
		Description string `json:"description"`
	}{Target: target, Reuse: t.Reuse, Default: t.Default, Description: t.Description}
}

type Assumption struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
}

type Column struct {
	Col string `json:"col"`
}

type TableData struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// AskResult is the payload of a finished chat2data job.
type AskResult struct {
	Assumptions   []Assumption `json:"assumptions"`
	ClarifiedTask string       `json:"clarified_task"`
	Data          TableData    `json:"data"`
	Description   string       `json:"description"`
	SQL           string       `json:"sql"`
	SQLError      *string      `json:"sql_error"`
	Status        JobStatus    `json:"status"`
	TaskID        string       `json:"task_id"`
	Type          string       `json:"type"`
}

func (r *AskResult) ColumnNames() []string {
	names := make([]string, 0, len(r.Data.Columns))
	for _, c := range r.Data.Columns {
		names = append(names, c.Col)
	}
	return names
}

// AskJob is a terminal chat2data job with its decoded payload.
// Answer is nil unless the job is done.
type AskJob struct {
	Job
	Answer *AskResult `json:"answer,omitempty"`
}

type Relationship struct {
	ReferencedTable        string `json:"referenced_table"`
	ReferencedTableColumn  string `json:"referenced_table_column"`
	ReferencingTable       string `json:"referencing_table"`
	ReferencingTableColumn string `json:"referencing_table_column"`
}

type ColumnSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TableSummary struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Columns     map[string]ColumnSummary `json:"columns"`
}

type DataSummary struct {
	ClusterID     string `json:"cluster_id"`
	DataSummaryID int64  `json:"data_summary_id"`
	Database      string `json:"database"`
	Default       bool   `json:"default"`
	Status        string `json:"status"`
	Description   struct {
		System string `json:"system"`
		User   string `json:"user"`
	} `json:"description"`
	Keywords      []string                  `json:"keywords"`
	Relationships map[string][]Relationship `json:"relationships"`
	Summary       string                    `json:"summary"`
	Tables        map[string]TableSummary   `json:"tables"`
}

// DataSummaryJob is a terminal data summary job with its decoded payload.
type DataSummaryJob struct {
	Job
	Summary *DataSummary `json:"summary,omitempty"`
}
