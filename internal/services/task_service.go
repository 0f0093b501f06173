package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
)

// TaskService owns the task lifecycle and its activity trail.
type TaskService struct {
	tasks      repositories.TaskRepository
	activities repositories.ActivityRepository
}

func NewTaskService(tasks repositories.TaskRepository, activities repositories.ActivityRepository) *TaskService {
	return &TaskService{tasks: tasks, activities: activities}
}

type CreateTaskInput struct {
	UserID      uuid.UUID
	Title       string
	DueDate     *time.Time
	IsCompleted bool
}

func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	task := &models.Task{
		UserID:      input.UserID,
		Title:       input.Title,
		DueDate:     input.DueDate,
		IsCompleted: input.IsCompleted,
	}
	if input.IsCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return s.tasks.GetByUserID(ctx, userID)
}

// SetCompleted toggles completion. CompletedAt is set exactly when the task
// becomes completed and cleared when it is reopened. Completing a task
// appends an activity entry; the log itself is never mutated.
func (s *TaskService) SetCompleted(ctx context.Context, id uuid.UUID, isCompleted bool) (*models.Task, error) {
	var completedAt *time.Time
	if isCompleted {
		now := time.Now()
		completedAt = &now
	}

	task, err := s.tasks.SetCompleted(ctx, id, isCompleted, completedAt)
	if err != nil {
		return nil, err
	}

	if isCompleted {
		reference := task.ID.String()
		referenceType := "task"
		activity := &models.Activity{
			UserID:        task.UserID,
			Type:          models.ActivityTaskCompleted,
			Title:         "Task completed",
			Description:   task.Title,
			Icon:          "check_circle",
			IconBgColor:   "bg-green-100",
			Timestamp:     *completedAt,
			Reference:     &reference,
			ReferenceType: &referenceType,
		}
		if err := s.activities.Append(ctx, activity); err != nil {
			return nil, fmt.Errorf("failed to append activity: %w", err)
		}
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.tasks.Delete(ctx, id)
}
