package service

import (
	"context"
	"errors"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/pkg/log"
	"github.com/dataservice/chat2query/pkg/metrics"
)

// Chat2Query is the part of the job client used by AskService.
type Chat2Query interface {
	Ask(ctx context.Context, question string, opts ...client.PollOption) (*client.AskJob, error)
	GetDataSummary(ctx context.Context, opts ...client.PollOption) (*client.DataSummaryJob, error)
	GetJob(ctx context.Context, jobID string) (*client.Job, error)
}

// ClientFactory builds a client bound to one connection.
type ClientFactory func(service client.Service) Chat2Query

// Connection replaces the default connection for a single call. It is used
// as a whole: the server's own keys are never sent to another host, so every
// field must be set.
type Connection struct {
	BaseURL    string `json:"baseUrl,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
	ClusterID  string `json:"clusterId,omitempty"`
	Database   string `json:"database,omitempty"`
}

func (c *Connection) Service() client.Service {
	return client.Service{
		Server: c.BaseURL,
		Credentials: client.Credentials{
			PublicKey:  c.PublicKey,
			PrivateKey: c.PrivateKey,
		},
		ClusterID: c.ClusterID,
		Database:  c.Database,
	}
}

type AskService struct {
	service       client.Service
	defaultClient Chat2Query
	newClient     ClientFactory
	pollOpts      []client.PollOption
	logger        *log.StructuredLogger
}

func NewAskService(service client.Service, newClient ClientFactory, pollOpts ...client.PollOption) *AskService {
	return &AskService{
		service:       service,
		defaultClient: newClient(service),
		newClient:     newClient,
		pollOpts:      pollOpts,
		logger:        log.NewDebugLogger("ask_service"),
	}
}

// clientFor returns the default client, or a fresh one when the call brings
// its own connection. The default client is never modified.
func (s *AskService) clientFor(conn *Connection) (Chat2Query, client.Service, error) {
	if conn == nil {
		return s.defaultClient, s.service, nil
	}

	service := conn.Service()
	cfg := client.Config{Service: service}
	if err := cfg.Validate(); err != nil {
		return nil, service, NewErrInvalidConnection(err)
	}
	return s.newClient(service), service, nil
}

// Ask submits the question and waits for the answer. Application failures
// are returned as an Answer carrying the message; transport errors are
// returned as errors.
func (s *AskService) Ask(ctx context.Context, question string, conn *Connection) (*Answer, error) {
	tracer := s.logger.WithContext(ctx).Operation("ask").WithBool("connection_override", conn != nil).Build()

	c, service, err := s.clientFor(conn)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	metrics.UniqueCallersPerWeek.IncreaseTotalUniqueCaller(service.PublicKey)

	job, err := c.Ask(ctx, question, s.pollOpts...)
	if err != nil {
		var failure *client.ApplicationFailure
		if errors.As(err, &failure) {
			tracer.Step("application_failure").WithInt("code", failure.Code).Log()
			answer := ApplicationFailureAnswer(failure)
			return &answer, nil
		}
		tracer.Error(err).Log()
		return nil, err
	}

	answer := NormalizeAsk(job)
	tracer.Success().
		WithString("job_id", job.ID).
		WithString("status", string(job.Status)).
		WithInt("rows", len(answer.Rows)).
		Log()
	return &answer, nil
}

func (s *AskService) DataSummary(ctx context.Context, conn *Connection) (*client.DataSummaryJob, error) {
	tracer := s.logger.WithContext(ctx).Operation("data_summary").WithBool("connection_override", conn != nil).Build()

	c, _, err := s.clientFor(conn)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	job, err := c.GetDataSummary(ctx, s.pollOpts...)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Success().WithString("job_id", job.ID).WithString("status", string(job.Status)).Log()
	return job, nil
}

// GetJob polls a job once.
func (s *AskService) GetJob(ctx context.Context, jobID string, conn *Connection) (*client.Job, error) {
	tracer := s.logger.WithContext(ctx).Operation("get_job").WithString("job_id", jobID).Build()

	c, _, err := s.clientFor(conn)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	job, err := c.GetJob(ctx, jobID)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Success().WithString("status", string(job.Status)).Log()
	return job, nil
}
