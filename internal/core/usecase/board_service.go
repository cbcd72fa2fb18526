package usecase

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

// BoardService owns the kanban boards: task cards on internal projects and
// story cards on client projects. Ordering arithmetic lives in domain; the
// repositories apply it transactionally.
type BoardService struct {
	tasks   ports.TaskRepository
	stories ports.StoryRepository
}

func NewBoardService(tasks ports.TaskRepository, stories ports.StoryRepository) *BoardService {
	return &BoardService{tasks: tasks, stories: stories}
}

func (s *BoardService) CreateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, err
	}
	return s.tasks.Create(ctx, task)
}

func (s *BoardService) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *BoardService) ListTasks(ctx context.Context, internalProjectID string) ([]domain.Task, error) {
	if internalProjectID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.tasks.ListByInternalProject(ctx, internalProjectID)
}

func (s *BoardService) UpdateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if err := task.Validate(); err != nil {
		return domain.Task{}, err
	}
	return s.tasks.Update(ctx, task)
}

func (s *BoardService) DeleteTask(ctx context.Context, id string) (bool, error) {
	return s.tasks.Delete(ctx, id)
}

// MoveTask applies a drag-and-drop move of a task card and returns the
// internal project's freshly ordered task list.
func (s *BoardService) MoveTask(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Task, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.tasks.Move(ctx, id, status, order)
}

func (s *BoardService) CreateStory(ctx context.Context, story domain.Story) (domain.Story, error) {
	if story.Status == "" {
		story.Status = domain.StatusTodo
	}
	if err := story.Validate(); err != nil {
		return domain.Story{}, err
	}
	return s.stories.Create(ctx, story)
}

func (s *BoardService) GetStory(ctx context.Context, id string) (domain.Story, error) {
	return s.stories.Get(ctx, id)
}

func (s *BoardService) ListStories(ctx context.Context, projectID string) ([]domain.Story, error) {
	if projectID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.stories.ListByProject(ctx, projectID)
}

func (s *BoardService) UpdateStory(ctx context.Context, story domain.Story) (domain.Story, error) {
	if err := story.Validate(); err != nil {
		return domain.Story{}, err
	}
	return s.stories.Update(ctx, story)
}

func (s *BoardService) DeleteStory(ctx context.Context, id string) (bool, error) {
	return s.stories.Delete(ctx, id)
}

// MoveStory is the story-board counterpart of MoveTask, scoped by the parent
// client project.
func (s *BoardService) MoveStory(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Story, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.stories.Move(ctx, id, status, order)
}
