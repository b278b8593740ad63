package v1

import (
	"net/http"

	"github.com/dataservice/chat2query/internal/handlers/validator"
	"github.com/dataservice/chat2query/internal/service"
	"github.com/dataservice/chat2query/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ServiceHandler struct {
	askSrv       *service.AskService
	todoSrv      *service.TodoService
	dashboardSrv *service.DashboardService
	validator    *validator.Validator
}

func NewServiceHandler(askSrv *service.AskService, todoSrv *service.TodoService, dashboardSrv *service.DashboardService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewTodoValidationRules()...)
	v.Register(validator.NewQueryValidationRules()...)

	return &ServiceHandler{
		askSrv:       askSrv,
		todoSrv:      todoSrv,
		dashboardSrv: dashboardSrv,
		validator:    v,
	}
}

// RegisterRoutes mounts the api on r. Paths are relative to /api/v1.
func (h *ServiceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.Ask)
	r.Post("/data-summary", h.DataSummary)
	r.Get("/jobs/{id}", h.GetJob)
	r.Get("/gateway/*", h.Gateway)

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Post("/clear-completed", h.ClearCompleted)
		r.Post("/toggle-all", h.ToggleAll)
		r.Put("/{id}", h.EditTodo)
		r.Delete("/{id}", h.DeleteTodo)
		r.Post("/{id}/toggle", h.ToggleTodo)
	})

	r.Get("/info", h.Info)
}

func Health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "ok"})
}

func (h *ServiceHandler) Info(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	_ = render.Render(w, r, InfoReply{GitCommit: info.GitCommit, GitVersion: info.GitVersion})
}
