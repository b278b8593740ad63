package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	outcomeOK                 = "ok"
	outcomeTransportError     = "transport_error"
	outcomeApplicationFailure = "application_failure"
	outcomeMalformedResponse  = "malformed_response"
)

// BasicAuth builds the Authorization header value for a key pair.
func BasicAuth(creds Credentials) string {
	token := base64.StdEncoding.EncodeToString([]byte(creds.PublicKey + ":" + creds.PrivateKey))
	return "Basic " + token
}

// requestID reuses the id of the inbound request when the call is made on
// behalf of the api server, so both sides log the same id.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// send issues one request and returns the body of a 2xx response. Any other
// outcome is reported as a *TransportError.
func send(ctx context.Context, httpClient *http.Client, method, baseURL, path string, creds Credentials, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", BasicAuth(creds))
	req.Header.Set(middleware.RequestIDHeader, requestID(ctx))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain body to enable connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, NewTransportError(resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode), Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return bodyBytes, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case IsApplicationFailure(err):
		return outcomeApplicationFailure
	case errors.Is(err, ErrMalformedResponse):
		return outcomeMalformedResponse
	default:
		return outcomeTransportError
	}
}
