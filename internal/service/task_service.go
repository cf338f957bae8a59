package service

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/tasks/v1"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// TaskService orchestrates task operations on the default task list.
type TaskService struct {
	tasks   port.TaskProvider
	timeout time.Duration
}

// NewTaskService creates a new task service. timeout bounds each
// provider call; zero means no explicit deadline.
func NewTaskService(tasks port.TaskProvider, timeout time.Duration) *TaskService {
	return &TaskService{tasks: tasks, timeout: timeout}
}

func (s *TaskService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// CreateTask creates a task. Due, when present, is normalized to an
// RFC 3339 timestamp, which is what the Tasks API expects.
func (s *TaskService) CreateTask(ctx context.Context, tokens *domain.TokenSet, in domain.TaskInput) (*tasks.Task, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}

	task, err := toTaskResource(in)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.tasks.InsertTask(ctx, tokens, task)
}

// UpdateTask replaces a task by id.
func (s *TaskService) UpdateTask(ctx context.Context, tokens *domain.TokenSet, taskID string, in domain.TaskInput) (*tasks.Task, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}
	if taskID == "" {
		return nil, fmt.Errorf("task id: %w", port.ErrMissingInput)
	}

	task, err := toTaskResource(in)
	if err != nil {
		return nil, err
	}
	task.Id = taskID

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.tasks.UpdateTask(ctx, tokens, taskID, task)
}

// DeleteTask deletes a task by id.
func (s *TaskService) DeleteTask(ctx context.Context, tokens *domain.TokenSet, taskID string) error {
	if !tokens.HasAccessToken() {
		return port.ErrUnauthenticated
	}
	if taskID == "" {
		return fmt.Errorf("task id: %w", port.ErrMissingInput)
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	return s.tasks.DeleteTask(ctx, tokens, taskID)
}

func toTaskResource(in domain.TaskInput) (*tasks.Task, error) {
	task := &tasks.Task{
		Title:  in.Title,
		Notes:  in.Notes,
		Status: in.Status,
	}
	if in.Due != "" {
		due, err := parseTimestamp(in.Due)
		if err != nil {
			return nil, fmt.Errorf("%w: due %q is not a valid timestamp", port.ErrInvalidInput, in.Due)
		}
		task.Due = due.UTC().Format(time.RFC3339)
	}
	return task, nil
}
