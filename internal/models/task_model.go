package models

import (
	"fmt"
	"time"
)

// Task is a to-do item owned by the user who created it.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedBy   string    `json:"createdBy"`
}

// TaskInput is the form payload for creating or editing a task.
type TaskInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// TaskFilter selects which tasks a list view shows.
type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterActive    TaskFilter = "active"
	TaskFilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter accepts "", "all", "active" and "completed".
func ParseTaskFilter(s string) (TaskFilter, error) {
	switch TaskFilter(s) {
	case "", TaskFilterAll:
		return TaskFilterAll, nil
	case TaskFilterActive:
		return TaskFilterActive, nil
	case TaskFilterCompleted:
		return TaskFilterCompleted, nil
	}
	return "", fmt.Errorf("unknown task filter %q", s)
}

// FilterTasks returns the tasks matching f, preserving order.
func FilterTasks(tasks []Task, f TaskFilter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case TaskFilterActive:
			if t.Completed {
				continue
			}
		case TaskFilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
