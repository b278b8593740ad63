package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dataservice/chat2query/internal/service"
	"github.com/dataservice/chat2query/internal/store/model"
	"github.com/dataservice/chat2query/pkg/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (h *ServiceHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("list_todos").Build()

	params := ListTodosParams{
		Page:   service.DefaultTodoPage,
		Limit:  service.DefaultTodoLimit,
		Filter: r.URL.Query().Get("filter"),
	}
	var err error
	if params.Page, err = intQuery(r, "page", params.Page); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if params.Limit, err = intQuery(r, "limit", params.Limit); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(params); err != nil {
		renderServiceError(w, r, err)
		return
	}

	page, err := h.todoSrv.List(r.Context(), service.TodoListParams{
		Page:   params.Page,
		Limit:  params.Limit,
		Filter: service.TodoFilter(params.Filter),
	})
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	todos := page.Todos
	if todos == nil {
		todos = model.TodoList{}
	}

	logger.Success().WithInt64("total", page.Total).Log()
	_ = render.Render(w, r, TodoListReply{Success: true, Todos: todos, Total: page.Total})
}

func (h *ServiceHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("create_todo").Build()

	req, ok := h.decodeTodo(w, r)
	if !ok {
		return
	}

	todo, err := h.todoSrv.Create(r.Context(), req.Title)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithUint64("todo_id", todo.ID).Log()
	_ = render.Render(w, r, TodoReply{Success: true, Todo: todo, status: http.StatusCreated})
}

func (h *ServiceHandler) EditTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("edit_todo").WithUint64("todo_id", id).Build()

	req, ok := h.decodeTodo(w, r)
	if !ok {
		return
	}

	todo, err := h.todoSrv.Edit(r.Context(), id, req.Title)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, TodoReply{Success: true, Todo: todo})
}

func (h *ServiceHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("toggle_todo").WithUint64("todo_id", id).Build()

	todo, err := h.todoSrv.Toggle(r.Context(), id)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, TodoReply{Success: true, Todo: todo})
}

func (h *ServiceHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("delete_todo").WithUint64("todo_id", id).Build()

	if err := h.todoSrv.Delete(r.Context(), id); err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, TodoReply{Success: true})
}

func (h *ServiceHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("clear_completed").Build()

	n, err := h.todoSrv.ClearCompleted(r.Context())
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, TodoReply{Success: true, Affected: &n})
}

func (h *ServiceHandler) ToggleAll(w http.ResponseWriter, r *http.Request) {
	logger := log.NewDebugLogger("todo_handler").WithContext(r.Context()).Operation("toggle_all").Build()

	var req ToggleAllRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	n, err := h.todoSrv.ToggleAll(r.Context(), req.Completed)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().Log()
	_ = render.Render(w, r, TodoReply{Success: true, Affected: &n})
}

func (h *ServiceHandler) decodeTodo(w http.ResponseWriter, r *http.Request) (*TodoRequest, bool) {
	var req TodoRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		renderServiceError(w, r, err)
		return nil, false
	}
	return &req, true
}

func todoID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid todo id %q", raw))
		return 0, false
	}
	return id, true
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
