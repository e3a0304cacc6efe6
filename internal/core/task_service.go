package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/models"
)

const taskNotFoundMessage = "Task not found"

type taskService struct {
	taskRepo db.TaskRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService instance. Repeated calls with the
// same input create duplicate tasks.
func NewTaskService(tr db.TaskRepository, logger *zap.Logger) TaskService {
	return &taskService{taskRepo: tr, logger: logger, now: time.Now}
}

func (s *taskService) GetTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.taskRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		s.logger.Error("Error getting tasks", zap.String("uid", userID), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to fetch tasks")
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, taskError(err, "Failed to fetch task")
	}
	return task, nil
}

// CreateTask stores a new incomplete task. The returned task carries
// client-side timestamps; the stored ones are assigned by the server.
func (s *taskService) CreateTask(ctx context.Context, userID string, input models.TaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperror.Validation("Title is required", nil)
	}
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		CreatedBy:   userID,
	}
	id, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		s.logger.Error("Error creating task", zap.String("uid", userID), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to create task")
	}
	now := s.now().UTC()
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return task, nil
}

// owned loads taskID and hides it from anyone but its creator.
func (s *taskService) owned(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, taskError(err, "Failed to fetch task")
	}
	if userID == "" || task.CreatedBy != userID {
		s.logger.Warn("Rejected access to task owned by another user",
			zap.String("uid", userID), zap.String("taskId", taskID))
		return nil, apperror.NotFound(taskNotFoundMessage)
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, userID, taskID string, input models.TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperror.Validation("Title is required", nil)
	}
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	err := s.taskRepo.Update(ctx, taskID, map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
	})
	if err != nil {
		return taskError(err, "Failed to update task")
	}
	return nil
}

func (s *taskService) ToggleTaskComplete(ctx context.Context, userID, taskID string, completed bool) error {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.taskRepo.Update(ctx, taskID, map[string]interface{}{"completed": !completed}); err != nil {
		return taskError(err, "Failed to toggle task")
	}
	return nil
}

func (s *taskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.owned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return taskError(err, "Failed to delete task")
	}
	return nil
}

func taskError(err error, fallback string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperror.NotFound(taskNotFoundMessage)
	}
	return apperror.Wrap(err, fallback)
}
