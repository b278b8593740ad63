package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dataservice/chat2query/internal/store"
	"github.com/dataservice/chat2query/internal/store/model"
	"github.com/dataservice/chat2query/pkg/log"
)

type TodoFilter string

const (
	TodoFilterAll       TodoFilter = "all"
	TodoFilterActive    TodoFilter = "active"
	TodoFilterCompleted TodoFilter = "completed"
)

const (
	DefaultTodoPage  = 1
	DefaultTodoLimit = 10
	MaxTodoLimit     = 100
)

type TodoListParams struct {
	Page   int
	Limit  int
	Filter TodoFilter
}

type TodoPage struct {
	Todos model.TodoList
	Total int64
}

type TodoService struct {
	store  store.Store
	logger *log.StructuredLogger
}

func NewTodoService(store store.Store) *TodoService {
	return &TodoService{
		store:  store,
		logger: log.NewDebugLogger("todo_service"),
	}
}

// List returns one page of todos, newest first, with the number of todos
// matching the filter.
func (ts *TodoService) List(ctx context.Context, params TodoListParams) (*TodoPage, error) {
	if params.Page == 0 {
		params.Page = DefaultTodoPage
	}
	if params.Limit == 0 {
		params.Limit = DefaultTodoLimit
	}
	if params.Filter == "" {
		params.Filter = TodoFilterAll
	}

	tracer := ts.logger.WithContext(ctx).
		Operation("list_todos").
		WithInt("page", params.Page).
		WithInt("limit", params.Limit).
		WithString("filter", string(params.Filter)).
		Build()

	if params.Page < 1 {
		return nil, NewErrInvalidTodo(fmt.Sprintf("page must be at least 1, got %d", params.Page))
	}
	if params.Limit < 1 || params.Limit > MaxTodoLimit {
		return nil, NewErrInvalidTodo(fmt.Sprintf("limit must be between 1 and %d, got %d", MaxTodoLimit, params.Limit))
	}

	filter := store.NewTodoQueryFilter()
	switch params.Filter {
	case TodoFilterAll:
	case TodoFilterActive:
		filter = filter.ByCompleted(false)
	case TodoFilterCompleted:
		filter = filter.ByCompleted(true)
	default:
		return nil, NewErrInvalidTodo(fmt.Sprintf("unknown filter %q", params.Filter))
	}

	// list and count read the same snapshot
	ctx, err := ts.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	todos, err := ts.store.Todo().List(ctx, filter, store.NewTodoQueryOptions().WithNewestFirst().WithPage(params.Page, params.Limit))
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	total, err := ts.store.Todo().Count(ctx, filter)
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	tracer.Success().WithInt("count", len(todos)).WithInt64("total", total).Log()
	return &TodoPage{Todos: todos, Total: total}, nil
}

func (ts *TodoService) Create(ctx context.Context, title string) (*model.Todo, error) {
	tracer := ts.logger.WithContext(ctx).Operation("create_todo").Build()

	if title == "" {
		return nil, NewErrInvalidTodo("title must not be empty")
	}

	todo, err := ts.store.Todo().Create(ctx, title)
	if err != nil {
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	tracer.Success().WithUint64("todo_id", todo.ID).Log()
	return todo, nil
}

func (ts *TodoService) Toggle(ctx context.Context, id uint64) (*model.Todo, error) {
	tracer := ts.logger.WithContext(ctx).Operation("toggle_todo").WithUint64("todo_id", id).Build()

	todo, err := ts.store.Todo().Toggle(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTodoNotFound(id)
		}
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}

	tracer.Success().WithBool("completed", todo.Completed).Log()
	return todo, nil
}

func (ts *TodoService) Edit(ctx context.Context, id uint64, title string) (*model.Todo, error) {
	tracer := ts.logger.WithContext(ctx).Operation("edit_todo").WithUint64("todo_id", id).Build()

	if title == "" {
		return nil, NewErrInvalidTodo("title must not be empty")
	}

	todo, err := ts.store.Todo().UpdateTitle(ctx, id, title)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTodoNotFound(id)
		}
		tracer.Error(err).Log()
		return nil, fmt.Errorf("failed to edit todo: %w", err)
	}

	tracer.Success().Log()
	return todo, nil
}

func (ts *TodoService) Delete(ctx context.Context, id uint64) error {
	tracer := ts.logger.WithContext(ctx).Operation("delete_todo").WithUint64("todo_id", id).Build()

	if err := ts.store.Todo().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrTodoNotFound(id)
		}
		tracer.Error(err).Log()
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	tracer.Success().Log()
	return nil
}

func (ts *TodoService) ClearCompleted(ctx context.Context) (int64, error) {
	tracer := ts.logger.WithContext(ctx).Operation("clear_completed").Build()

	n, err := ts.store.Todo().DeleteCompleted(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return 0, fmt.Errorf("failed to clear completed todos: %w", err)
	}

	tracer.Success().WithInt64("deleted", n).Log()
	return n, nil
}

func (ts *TodoService) ToggleAll(ctx context.Context, completed bool) (int64, error) {
	tracer := ts.logger.WithContext(ctx).Operation("toggle_all").WithBool("completed", completed).Build()

	n, err := ts.store.Todo().SetAllCompleted(ctx, completed)
	if err != nil {
		tracer.Error(err).Log()
		return 0, fmt.Errorf("failed to toggle all todos: %w", err)
	}

	tracer.Success().WithInt64("updated", n).Log()
	return n, nil
}
