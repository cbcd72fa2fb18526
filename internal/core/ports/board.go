package ports

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type TaskRepository interface {
	// Create appends the task at the tail of its (internal project, status)
	// column.
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Get(ctx context.Context, id string) (domain.Task, error)
	// ListByInternalProject returns every task of the internal project
	// ordered by (status, sort_order) ascending.
	ListByInternalProject(ctx context.Context, internalProjectID string) ([]domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	// Delete removes the task and closes the order gap in the vacated column.
	Delete(ctx context.Context, id string) (bool, error)
	// Move applies a drag-and-drop move in a single transaction and returns
	// the parent's full task list ordered by (status, sort_order).
	Move(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Task, error)
}

type StoryRepository interface {
	Create(ctx context.Context, story domain.Story) (domain.Story, error)
	Get(ctx context.Context, id string) (domain.Story, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Story, error)
	Update(ctx context.Context, story domain.Story) (domain.Story, error)
	Delete(ctx context.Context, id string) (bool, error)
	Move(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Story, error)
}
