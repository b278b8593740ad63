package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dataservice/chat2query/pkg/metrics"
	"go.uber.org/zap"
)

const jobsEndpoint = "/v2/jobs"

// Chat2Query is a client for the natural-language-to-SQL service. It submits
// jobs and polls them until they reach a terminal status.
//
// A Chat2Query value is immutable once built and safe for concurrent use:
// every AwaitJob call owns its job id and shares no mutable state.
type Chat2Query struct {
	service    Service
	httpClient *http.Client
	poll       pollOptions
}

type ClientOption func(*Chat2Query)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Chat2Query) {
		c.httpClient = httpClient
	}
}

// WithDefaultPollOptions sets the poll options used when a call passes none.
func WithDefaultPollOptions(opts ...PollOption) ClientOption {
	return func(c *Chat2Query) {
		for _, opt := range opts {
			opt(&c.poll)
		}
	}
}

func NewChat2Query(service Service, opts ...ClientOption) *Chat2Query {
	c := &Chat2Query{
		service:    service,
		httpClient: &http.Client{},
		poll:       defaultPollOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithService returns a client for another connection, keeping the HTTP
// client and poll defaults. The receiver is left untouched.
func (c *Chat2Query) WithService(service Service) *Chat2Query {
	c2 := *c
	c2.service = service
	return &c2
}

func (c *Chat2Query) Service() Service {
	return c.service
}

type pollOptions struct {
	backoff     Backoff
	maxAttempts int
	timeout     time.Duration
}

func defaultPollOptions() pollOptions {
	return pollOptions{backoff: ConstantBackoff(DefaultPollInterval)}
}

// PollOption bounds or reshapes the wait loop of AwaitJob.
type PollOption func(*pollOptions)

// WithBackoff replaces the fixed 5 second delay between polls. Delays shorter
// than MinPollDelay are raised to it.
func WithBackoff(b Backoff) PollOption {
	return func(o *pollOptions) {
		if b != nil {
			o.backoff = b
		}
	}
}

// WithInterval polls on a fixed interval.
func WithInterval(d time.Duration) PollOption {
	return WithBackoff(ConstantBackoff(d))
}

// WithMaxAttempts caps the number of polls; zero means no cap.
func WithMaxAttempts(n int) PollOption {
	return func(o *pollOptions) {
		o.maxAttempts = n
	}
}

// WithTimeout caps the total wait; zero means no deadline.
func WithTimeout(d time.Duration) PollOption {
	return func(o *pollOptions) {
		o.timeout = d
	}
}

func (c *Chat2Query) pollOptions(opts ...PollOption) pollOptions {
	o := c.poll
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// call sends a request and unwraps the response envelope. A code other than
// 200 is reported as an *ApplicationFailure.
func (c *Chat2Query) call(ctx context.Context, method, path, label string, body any) (json.RawMessage, error) {
	result, err := c.doCall(ctx, method, path, body)
	metrics.IncreaseRemoteRequestsMetric(label, outcome(err))
	return result, err
}

func (c *Chat2Query) doCall(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	raw, err := send(ctx, c.httpClient, method, c.service.Server, path, c.service.Credentials, body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Code != http.StatusOK {
		return nil, &ApplicationFailure{Code: env.Code, Message: env.Msg}
	}
	return env.Result, nil
}

// Submit creates a job for the task and returns its identifier.
func (c *Chat2Query) Submit(ctx context.Context, task Task) (string, error) {
	result, err := c.call(ctx, http.MethodPost, task.Endpoint(), task.Endpoint(), task.Payload(c.service.Target()))
	if err != nil {
		return "", err
	}

	var s submission
	if err := json.Unmarshal(result, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if s.JobID == "" {
		return "", fmt.Errorf("%w: submission returned no job id", ErrMalformedResponse)
	}

	zap.S().Named("chat2query_client").Debugw("job submitted", "job_id", s.JobID, "endpoint", task.Endpoint())
	return s.JobID, nil
}

// GetJob polls the status of a job once.
func (c *Chat2Query) GetJob(ctx context.Context, jobID string) (*Job, error) {
	result, err := c.call(ctx, http.MethodGet, jobsEndpoint+"/"+url.PathEscape(jobID), jobsEndpoint, nil)
	if err != nil {
		return nil, err
	}

	if len(result) == 0 || string(result) == "null" {
		return nil, fmt.Errorf("%w: job %s has no status record", ErrMalformedResponse, jobID)
	}

	var job Job
	if err := json.Unmarshal(result, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// an unknown status would be polled forever
	if !job.Status.IsValid() {
		return nil, fmt.Errorf("%w: job %s has unknown status %q", ErrMalformedResponse, jobID, job.Status)
	}
	if job.ID == "" {
		job.ID = jobID
	}
	metrics.IncreaseJobPollsTotalMetric(string(job.Status))
	return &job, nil
}

// AwaitJob polls the job until it reaches a terminal status and returns it.
// Only a non-terminal status is retried: transport errors and application
// failures are returned from the poll that hit them. By default the loop
// waits 5 seconds between polls and never gives up; use PollOptions or the
// context to bound it. Giving up only stops local polling, the remote job
// keeps running.
func (c *Chat2Query) AwaitJob(ctx context.Context, jobID string, opts ...PollOption) (*Job, error) {
	o := c.pollOptions(opts...)
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	logger := zap.S().Named("chat2query_client").With("job_id", jobID)
	start := time.Now()

	for attempt := 1; ; attempt++ {
		job, err := c.GetJob(ctx, jobID)
		if err != nil {
			logger.Debugw("job poll failed", "attempt", attempt, "error", err)
			return nil, err
		}

		if job.Status.IsTerminal() {
			waited := time.Since(start)
			metrics.ObserveJobFinished(string(job.Status), waited)
			logger.Debugw("job finished", "status", job.Status, "polls", attempt, "waited", waited)
			return job, nil
		}

		if o.maxAttempts > 0 && attempt >= o.maxAttempts {
			return nil, fmt.Errorf("job %s still %s after %d polls: %w", jobID, job.Status, attempt, ErrMaxAttemptsExceeded)
		}

		delay := o.backoff.Next(attempt)
		if delay < MinPollDelay {
			delay = MinPollDelay
		}
		logger.Debugw("job not finished", "status", job.Status, "attempt", attempt, "next_poll_in", delay)
		if err := sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting for job %s: %w", jobID, err)
		}
	}
}

// SubmitAndAwait submits the task and waits for the resulting job.
func (c *Chat2Query) SubmitAndAwait(ctx context.Context, task Task, opts ...PollOption) (*Job, error) {
	jobID, err := c.Submit(ctx, task)
	if err != nil {
		return nil, err
	}
	return c.AwaitJob(ctx, jobID, opts...)
}

// Ask submits a natural-language question and waits for the answer.
func (c *Chat2Query) Ask(ctx context.Context, question string, opts ...PollOption) (*AskJob, error) {
	job, err := c.SubmitAndAwait(ctx, Chat2DataTask{Question: question}, opts...)
	if err != nil {
		return nil, err
	}

	askJob := &AskJob{Job: *job}
	if job.Status == JobStatusDone && job.HasResult() {
		var answer AskResult
		if err := job.Decode(&answer); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		askJob.Answer = &answer
	}
	return askJob, nil
}

// GetDataSummary asks the service to summarize the configured database and
// waits for the summary.
func (c *Chat2Query) GetDataSummary(ctx context.Context, opts ...PollOption) (*DataSummaryJob, error) {
	job, err := c.SubmitAndAwait(ctx, NewDataSummaryTask(), opts...)
	if err != nil {
		return nil, err
	}

	summaryJob := &DataSummaryJob{Job: *job}
	if job.Status == JobStatusDone && job.HasResult() {
		var summary DataSummary
		if err := job.Decode(&summary); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		summaryJob.Summary = &summary
	}
	return summaryJob, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
