package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/portfolio/internal/models"
)

type taskRepository struct {
	store DocumentStore
}

// NewTaskRepository creates a TaskRepository over the `tasks` collection.
func NewTaskRepository(store DocumentStore) TaskRepository {
	return &taskRepository{store: store}
}

// Create stores a new task with server-assigned timestamps and returns its ID.
func (r *taskRepository) Create(ctx context.Context, task *models.Task) (string, error) {
	id, err := r.store.Add(ctx, TasksCollection, map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed,
		"createdAt":   ServerTimestamp,
		"updatedAt":   ServerTimestamp,
		"createdBy":   task.CreatedBy,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create task: %w", err)
	}
	return id, nil
}

func (r *taskRepository) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	doc, err := r.store.Get(ctx, TasksCollection, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	task := taskFromDocument(doc)
	return &task, nil
}

// GetByOwnerID returns the owner's tasks, newest first.
func (r *taskRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]models.Task, error) {
	q := Query{}.Where("createdBy", ownerID).Order("createdAt", Desc)
	docs, err := r.store.Query(ctx, TasksCollection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %s: %w", ownerID, err)
	}
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, taskFromDocument(doc))
	}
	return tasks, nil
}

// Update writes fields into an existing task and stamps updatedAt.
func (r *taskRepository) Update(ctx context.Context, taskID string, fields map[string]interface{}) error {
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["updatedAt"] = ServerTimestamp
	if err := r.store.Update(ctx, TasksCollection, taskID, data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, taskID string) error {
	if err := r.store.Delete(ctx, TasksCollection, taskID); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	return nil
}

func taskFromDocument(doc *Document) models.Task {
	return models.Task{
		ID:          doc.ID,
		Title:       doc.String("title"),
		Description: doc.String("description"),
		Completed:   doc.Bool("completed"),
		CreatedAt:   doc.Time("createdAt"),
		UpdatedAt:   doc.Time("updatedAt"),
		CreatedBy:   doc.String("createdBy"),
	}
}
