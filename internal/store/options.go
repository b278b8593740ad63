package store

import (
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type TodoQueryFilter BaseQuerier

func NewTodoQueryFilter() *TodoQueryFilter {
	return &TodoQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *TodoQueryFilter) ByCompleted(completed bool) *TodoQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("completed = ?", completed)
	})
	return qf
}

func (qf *TodoQueryFilter) ByID(id uint64) *TodoQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", id)
	})
	return qf
}

type TodoQueryOptions BaseQuerier

func NewTodoQueryOptions() *TodoQueryOptions {
	return &TodoQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

// WithPage selects the page-th slice of size limit. Pages start at 1.
func (o *TodoQueryOptions) WithPage(page, limit int) *TodoQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return tx.Limit(limit).Offset((page - 1) * limit)
	})
	return o
}

// WithNewestFirst orders by creation time, newest first. The id breaks ties
// between rows created within the same clock tick.
func (o *TodoQueryOptions) WithNewestFirst() *TodoQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at DESC").Order("id DESC")
	})
	return o
}
