package model

import (
	"encoding/json"
	"time"
)

type Todo struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

type TodoList []Todo

func (t Todo) String() string {
	val, _ := json.Marshal(t)
	return string(val)
}

// TodoStats is a snapshot of the todo table used by the metrics collector.
type TodoStats struct {
	Total     int64
	Completed int64
}

func (s TodoStats) Active() int64 {
	return s.Total - s.Completed
}
