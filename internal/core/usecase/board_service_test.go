package usecase

import (
	"context"
	"testing"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type stubTaskRepo struct {
	created  []domain.Task
	moveID   string
	moveTo   domain.BoardStatus
	moveOrd  int
	moveList []domain.Task
}

func (r *stubTaskRepo) Create(_ context.Context, task domain.Task) (domain.Task, error) {
	task.ID = "t-1"
	r.created = append(r.created, task)
	return task, nil
}

func (r *stubTaskRepo) Get(_ context.Context, id string) (domain.Task, error) {
	return domain.Task{ID: id, InternalProjectID: "ip-1", Title: "x", Status: domain.StatusTodo}, nil
}

func (r *stubTaskRepo) ListByInternalProject(_ context.Context, _ string) ([]domain.Task, error) {
	return nil, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task domain.Task) (domain.Task, error) {
	return task, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (r *stubTaskRepo) Move(_ context.Context, id string, status domain.BoardStatus, order int) ([]domain.Task, error) {
	r.moveID, r.moveTo, r.moveOrd = id, status, order
	return r.moveList, nil
}

type stubStoryRepo struct{}

func (stubStoryRepo) Create(_ context.Context, story domain.Story) (domain.Story, error) {
	story.ID = "s-1"
	return story, nil
}

func (stubStoryRepo) Get(_ context.Context, id string) (domain.Story, error) {
	return domain.Story{ID: id, ProjectID: "p-1", Title: "x", Status: domain.StatusTodo}, nil
}

func (stubStoryRepo) ListByProject(_ context.Context, _ string) ([]domain.Story, error) {
	return nil, nil
}

func (stubStoryRepo) Update(_ context.Context, story domain.Story) (domain.Story, error) {
	return story, nil
}

func (stubStoryRepo) Delete(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (stubStoryRepo) Move(_ context.Context, _ string, _ domain.BoardStatus, _ int) ([]domain.Story, error) {
	return nil, nil
}

func TestCreateTaskDefaultsToTodo(t *testing.T) {
	tasks := &stubTaskRepo{}
	svc := NewBoardService(tasks, stubStoryRepo{})

	created, err := svc.CreateTask(context.Background(), domain.Task{InternalProjectID: "ip-1", Title: "write docs"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Status != domain.StatusTodo {
		t.Errorf("status = %q, want todo", created.Status)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := NewBoardService(&stubTaskRepo{}, stubStoryRepo{})

	if _, err := svc.CreateTask(context.Background(), domain.Task{Title: "no project"}); err != domain.ErrInvalidInput {
		t.Errorf("missing project should fail with ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateTask(context.Background(), domain.Task{InternalProjectID: "ip-1", Title: "x", Status: "archived"}); err != domain.ErrInvalidStatus {
		t.Errorf("bad status should fail with ErrInvalidStatus, got %v", err)
	}
}

func TestMoveTaskValidatesStatus(t *testing.T) {
	tasks := &stubTaskRepo{}
	svc := NewBoardService(tasks, stubStoryRepo{})

	if _, err := svc.MoveTask(context.Background(), "t-1", "archived", 0); err != domain.ErrInvalidStatus {
		t.Fatalf("invalid status should fail with ErrInvalidStatus, got %v", err)
	}

	if _, err := svc.MoveTask(context.Background(), "t-1", domain.StatusDone, 3); err != nil {
		t.Fatalf("move: %v", err)
	}
	if tasks.moveID != "t-1" || tasks.moveTo != domain.StatusDone || tasks.moveOrd != 3 {
		t.Errorf("move delegated with %q %q %d", tasks.moveID, tasks.moveTo, tasks.moveOrd)
	}
}

func TestListTasksRequiresProject(t *testing.T) {
	svc := NewBoardService(&stubTaskRepo{}, stubStoryRepo{})
	if _, err := svc.ListTasks(context.Background(), ""); err != domain.ErrInvalidInput {
		t.Errorf("empty project id should fail with ErrInvalidInput, got %v", err)
	}
}

func TestCreateStoryDefaultsToTodo(t *testing.T) {
	svc := NewBoardService(&stubTaskRepo{}, stubStoryRepo{})

	created, err := svc.CreateStory(context.Background(), domain.Story{ProjectID: "p-1", Title: "landing page"})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	if created.Status != domain.StatusTodo {
		t.Errorf("status = %q, want todo", created.Status)
	}
}
