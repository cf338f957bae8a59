package gtasks

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/port"
)

// The implicit default task list of the authenticated user.
const taskListID = "@default"

// Provider implements port.TaskProvider against Google Tasks v1.
type Provider struct{}

// NewProvider creates a new Google Tasks provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) service(ctx context.Context, tokens *domain.TokenSet) (*tasks.Service, error) {
	if !tokens.HasAccessToken() {
		return nil, port.ErrUnauthenticated
	}
	src := oauth2.StaticTokenSource(tokens.OAuth2Token())
	svc, err := tasks.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("gtasks: create tasks service: %w", err)
	}
	return svc, nil
}

// InsertTask creates a task on the default list.
func (p *Provider) InsertTask(ctx context.Context, tokens *domain.TokenSet, task *tasks.Task) (*tasks.Task, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	created, err := svc.Tasks.Insert(taskListID, task).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gtasks: insert task: %w", err)
	}
	return created, nil
}

// UpdateTask replaces a task by id on the default list.
func (p *Provider) UpdateTask(ctx context.Context, tokens *domain.TokenSet, taskID string, task *tasks.Task) (*tasks.Task, error) {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	updated, err := svc.Tasks.Update(taskListID, taskID, task).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gtasks: update task %s: %w", taskID, err)
	}
	return updated, nil
}

// DeleteTask deletes a task by id from the default list.
func (p *Provider) DeleteTask(ctx context.Context, tokens *domain.TokenSet, taskID string) error {
	svc, err := p.service(ctx, tokens)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete(taskListID, taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gtasks: delete task %s: %w", taskID, err)
	}
	return nil
}
