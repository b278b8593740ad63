package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/dataservice/chat2query/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (h *ServiceHandler) Ask(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("ask_handler").WithContext(r.Context()).Operation("ask").Build()

	var req AskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		renderServiceError(w, r, err)
		return
	}

	answer, err := h.askSrv.Ask(r.Context(), req.Question, req.Connection.toService())
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithBool("failed", answer.Failed()).Log()
	_ = render.Render(w, r, AnswerReply{answer})
}

func (h *ServiceHandler) DataSummary(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("ask_handler").WithContext(r.Context()).Operation("data_summary").Build()

	var req DataSummaryRequest
	// the body is optional
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		renderServiceError(w, r, err)
		return
	}

	job, err := h.askSrv.DataSummary(r.Context(), req.Connection.toService())
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithString("job_id", job.ID).Log()
	_ = render.Render(w, r, DataSummaryReply{job})
}

func (h *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	logger := log.NewDebugLogger("ask_handler").WithContext(r.Context()).Operation("get_job").WithString("job_id", jobID).Build()

	job, err := h.askSrv.GetJob(r.Context(), jobID, nil)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, JobReply{job})
}
