package store

import (
	"context"

	"github.com/dataservice/chat2query/internal/store/model"
	"gorm.io/gorm"
)

type Todo interface {
	List(ctx context.Context, filter *TodoQueryFilter, opts *TodoQueryOptions) (model.TodoList, error)
	Count(ctx context.Context, filter *TodoQueryFilter) (int64, error)
	Get(ctx context.Context, id uint64) (*model.Todo, error)
	Create(ctx context.Context, title string) (*model.Todo, error)
	UpdateTitle(ctx context.Context, id uint64, title string) (*model.Todo, error)
	Toggle(ctx context.Context, id uint64) (*model.Todo, error)
	SetAllCompleted(ctx context.Context, completed bool) (int64, error)
	Delete(ctx context.Context, id uint64) error
	DeleteCompleted(ctx context.Context) (int64, error)
}

type TodoStore struct {
	db *gorm.DB
}

// Make sure we conform to Todo interface
var _ Todo = (*TodoStore)(nil)

func NewTodoStore(db *gorm.DB) Todo {
	return &TodoStore{db: db}
}

func (t *TodoStore) List(ctx context.Context, filter *TodoQueryFilter, opts *TodoQueryOptions) (model.TodoList, error) {
	var todos model.TodoList
	tx := t.getDB(ctx).WithContext(ctx).Model(&todos)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (t *TodoStore) Count(ctx context.Context, filter *TodoQueryFilter) (int64, error) {
	var count int64
	tx := t.getDB(ctx).WithContext(ctx).Model(&model.Todo{})

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (t *TodoStore) Get(ctx context.Context, id uint64) (*model.Todo, error) {
	var todo model.Todo
	if err := t.getDB(ctx).WithContext(ctx).First(&todo, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &todo, nil
}

func (t *TodoStore) Create(ctx context.Context, title string) (*model.Todo, error) {
	todo := model.Todo{Title: title}
	if err := t.getDB(ctx).WithContext(ctx).Create(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (t *TodoStore) UpdateTitle(ctx context.Context, id uint64, title string) (*model.Todo, error) {
	result := t.getDB(ctx).WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).Update("title", title)
	if err := affectedOne(result); err != nil {
		return nil, err
	}
	return t.Get(ctx, id)
}

// Toggle flips the completed flag in the database, so concurrent toggles of
// the same row never read a stale value.
func (t *TodoStore) Toggle(ctx context.Context, id uint64) (*model.Todo, error) {
	result := t.getDB(ctx).WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).Update("completed", gorm.Expr("NOT completed"))
	if err := affectedOne(result); err != nil {
		return nil, err
	}
	return t.Get(ctx, id)
}

func (t *TodoStore) SetAllCompleted(ctx context.Context, completed bool) (int64, error) {
	result := t.getDB(ctx).WithContext(ctx).Model(&model.Todo{}).Where("completed <> ?", completed).Update("completed", completed)
	return result.RowsAffected, result.Error
}

func (t *TodoStore) Delete(ctx context.Context, id uint64) error {
	return affectedOne(t.getDB(ctx).WithContext(ctx).Delete(&model.Todo{}, "id = ?", id))
}

func (t *TodoStore) DeleteCompleted(ctx context.Context) (int64, error) {
	result := t.getDB(ctx).WithContext(ctx).Where("completed = ?", true).Delete(&model.Todo{})
	return result.RowsAffected, result.Error
}

func (t *TodoStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return t.db
}
