package store

import (
	"context"

	"github.com/dataservice/chat2query/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Todo() Todo
	Statistics(ctx context.Context) (model.TodoStats, error)
	Close() error
}

type DataStore struct {
	db   *gorm.DB
	todo Todo
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		todo: NewTodoStore(db),
		db:   db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Todo() Todo {
	return s.todo
}

func (s *DataStore) Statistics(ctx context.Context) (model.TodoStats, error) {
	total, err := s.Todo().Count(ctx, nil)
	if err != nil {
		return model.TodoStats{}, err
	}
	completed, err := s.Todo().Count(ctx, NewTodoQueryFilter().ByCompleted(true))
	if err != nil {
		return model.TodoStats{}, err
	}
	return model.TodoStats{Total: total, Completed: completed}, nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
