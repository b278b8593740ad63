package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/dataservice/chat2query/internal/client"
	"github.com/dataservice/chat2query/internal/handlers/validator"
	"github.com/dataservice/chat2query/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type ErrorReply struct {
	Message   string `json:"message"`
	RequestId string `json:"requestId,omitempty"`
	status    int
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	_ = render.Render(w, r, ErrorReply{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		status:    status,
	})
}

func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	renderError(w, r, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		notFound          *service.ErrResourceNotFound
		invalidTodo       *service.ErrInvalidTodo
		invalidConnection *service.ErrInvalidConnection
		invalidRequest    *validator.ErrInvalidRequest
		disabled          *service.ErrDataAPIDisabled
		transport         *client.TransportError
		failure           *client.ApplicationFailure
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidTodo), errors.As(err, &invalidConnection), errors.As(err, &invalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &disabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, client.ErrMaxAttemptsExceeded), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transport), errors.As(err, &failure), errors.Is(err, client.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
