package port

import (
	"context"

	"google.golang.org/api/tasks/v1"

	"github.com/meetbridge/meetbridge/internal/domain"
)

// TaskProvider is the outbound port for the tasks service, scoped to
// the caller's default task list.
type TaskProvider interface {
	InsertTask(ctx context.Context, tokens *domain.TokenSet, task *tasks.Task) (*tasks.Task, error)
	UpdateTask(ctx context.Context, tokens *domain.TokenSet, taskID string, task *tasks.Task) (*tasks.Task, error)
	DeleteTask(ctx context.Context, tokens *domain.TokenSet, taskID string) error
}
