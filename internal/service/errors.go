package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uint64, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %d not found", resourceType, id)}
}

func NewErrTodoNotFound(id uint64) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "todo")
}

type ErrInvalidTodo struct {
	error
}

func NewErrInvalidTodo(message string) *ErrInvalidTodo {
	return &ErrInvalidTodo{fmt.Errorf("invalid todo: %s", message)}
}

type ErrInvalidConnection struct {
	error
}

func NewErrInvalidConnection(err error) *ErrInvalidConnection {
	return &ErrInvalidConnection{fmt.Errorf("invalid connection: %w", err)}
}

type ErrDataAPIDisabled struct {
	error
}

func NewErrDataAPIDisabled() *ErrDataAPIDisabled {
	return &ErrDataAPIDisabled{fmt.Errorf("the data api is not configured")}
}
