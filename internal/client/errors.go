package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMaxAttemptsExceeded is returned by AwaitJob when the job is still
	// running after the configured number of polls.
	ErrMaxAttemptsExceeded = errors.New("job did not finish within the maximum number of polls")
	// ErrMalformedResponse is returned when a 2xx response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError reports that the HTTP call itself failed: either the request
// never completed or the server answered with a non-2xx status.
type TransportError struct {
	StatusCode int
	StatusText string
	Err        error
}

func NewTransportError(statusCode int) *TransportError {
	return &TransportError{StatusCode: statusCode, StatusText: http.StatusText(statusCode)}
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("HTTP status: %d, %s", e.StatusCode, e.StatusText)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationFailure reports a call that was transported successfully but
// failed at the application level: an envelope whose code is not 200 or a
// job that ended in the failed status. Message is meant for direct display.
type ApplicationFailure struct {
	// Code is the envelope code. It is zero for a failed job.
	Code int
	// JobID is set when the failure is the failed status of a job.
	JobID   string
	Message string
}

// IsJobFailure reports whether the failure comes from a job that ended in the
// failed status rather than from a rejected call.
func (e *ApplicationFailure) IsJobFailure() bool {
	return e.JobID != ""
}

func (e *ApplicationFailure) Error() string {
	return e.Message
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsApplicationFailure(err error) bool {
	var target *ApplicationFailure
	return errors.As(err, &target)
}
