package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgeworks/crmapi/internal/adapters/sqlite/gormsqlite"
	"github.com/forgeworks/crmapi/internal/core/domain"
)

type taskModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	InternalProjectID string     `gorm:"column:internal_project_id;not null"`
	Title             string     `gorm:"column:title;not null"`
	Description       string     `gorm:"column:description;not null"`
	AssigneeID        *string    `gorm:"column:assignee_id"`
	Status            string     `gorm:"column:status;not null"`
	SortOrder         int        `gorm:"column:sort_order;not null"`
	CompletedAt       *time.Time `gorm:"column:completed_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;not null"`
}

func (taskModel) TableName() string {
	return "tasks"
}

type storyModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	ProjectID   string     `gorm:"column:project_id;not null"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description;not null"`
	Status      string     `gorm:"column:status;not null"`
	SortOrder   int        `gorm:"column:sort_order;not null"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
}

func (storyModel) TableName() string {
	return "stories"
}

type TaskRepository struct {
	db *gormsqlite.DB
}

func NewTaskRepository(db *gormsqlite.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	now := time.Now().UTC()
	model := taskModel{
		ID:                uuid.NewString(),
		InternalProjectID: task.InternalProjectID,
		Title:             task.Title,
		Description:       task.Description,
		AssigneeID:        task.AssigneeID,
		Status:            string(task.Status),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var count int64
		if err := tx.Model(&taskModel{}).
			Where("internal_project_id = ? AND status = ?", task.InternalProjectID, model.Status).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count column: %w", err)
		}
		model.SortOrder = int(count)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return taskToDomain(model), nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (domain.Task, error) {
	var model taskModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	return taskToDomain(model), nil
}

func (r *TaskRepository) ListByInternalProject(ctx context.Context, internalProjectID string) ([]domain.Task, error) {
	var models []taskModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("internal_project_id = ?", internalProjectID).
			Order("status ASC, sort_order ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasksToDomain(models), nil
}

// Update edits the card's content. Status and position changes go through
// Move so the column ordering invariant is maintained in one place.
func (r *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&taskModel{}).Where("id = ?", task.ID).Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"assignee_id": task.AssigneeID,
			"updated_at":  time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return r.Get(ctx, task.ID)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var current taskModel
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load task: %w", err)
		}

		if err := tx.Where("id = ?", id).Delete(&taskModel{}).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		// Close the gap in the vacated column.
		if err := tx.Model(&taskModel{}).
			Where("internal_project_id = ? AND status = ? AND sort_order > ?",
				current.InternalProjectID, current.Status, current.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return fmt.Errorf("close column gap: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Move applies a drag-and-drop move in a single transaction. A status change
// re-indexes the whole destination column around the insertion point; a move
// within one column shifts only the interval between the old and new
// position. The two policies are deliberately kept separate.
func (r *TaskRepository) Move(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Task, error) {
	var result []domain.Task

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var current taskModel
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load task: %w", err)
		}

		statusChanged := current.Status != string(status)

		var destCount int64
		if err := tx.Model(&taskModel{}).
			Where("internal_project_id = ? AND status = ? AND id <> ?", current.InternalProjectID, string(status), id).
			Count(&destCount).Error; err != nil {
			return fmt.Errorf("count destination column: %w", err)
		}
		newOrder := domain.ClampOrder(order, int(destCount))

		now := time.Now().UTC()
		completedAt := domain.StampCompletion(domain.BoardStatus(current.Status), status, current.CompletedAt, now)

		var shifts []domain.OrderAssignment
		if statusChanged {
			var siblings []taskModel
			if err := tx.Where("internal_project_id = ? AND status = ? AND id <> ?", current.InternalProjectID, string(status), id).
				Order("sort_order ASC").Find(&siblings).Error; err != nil {
				return fmt.Errorf("load destination column: %w", err)
			}
			ids := make([]string, 0, len(siblings))
			for _, m := range siblings {
				ids = append(ids, m.ID)
			}
			shifts = domain.CrossColumnOrders(ids, newOrder)
		} else {
			var column []taskModel
			if err := tx.Where("internal_project_id = ? AND status = ?", current.InternalProjectID, current.Status).
				Order("sort_order ASC").Find(&column).Error; err != nil {
				return fmt.Errorf("load column: %w", err)
			}
			items := make([]domain.OrderAssignment, 0, len(column))
			for _, m := range column {
				items = append(items, domain.OrderAssignment{ID: m.ID, Order: m.SortOrder})
			}
			shifts = domain.SameColumnShift(items, id, newOrder)
		}

		if err := tx.Model(&taskModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":       string(status),
			"sort_order":   newOrder,
			"completed_at": completedAt,
			"updated_at":   now,
		}).Error; err != nil {
			return fmt.Errorf("move task: %w", err)
		}

		// A status change vacates a slot in the source column; close it the
		// same way Delete does.
		if statusChanged {
			if err := tx.Model(&taskModel{}).
				Where("internal_project_id = ? AND status = ? AND sort_order > ?",
					current.InternalProjectID, current.Status, current.SortOrder).
				UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
				return fmt.Errorf("close source column gap: %w", err)
			}
		}

		for _, assign := range shifts {
			if err := tx.Model(&taskModel{}).Where("id = ?", assign.ID).
				UpdateColumn("sort_order", assign.Order).Error; err != nil {
				return fmt.Errorf("repair column: %w", err)
			}
		}

		var models []taskModel
		if err := tx.Where("internal_project_id = ?", current.InternalProjectID).
			Order("status ASC, sort_order ASC").
			Find(&models).Error; err != nil {
			return fmt.Errorf("reload board: %w", err)
		}
		result = tasksToDomain(models)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func taskToDomain(model taskModel) domain.Task {
	return domain.Task{
		ID:                model.ID,
		InternalProjectID: model.InternalProjectID,
		Title:             model.Title,
		Description:       model.Description,
		AssigneeID:        model.AssigneeID,
		Status:            domain.BoardStatus(model.Status),
		Order:             model.SortOrder,
		CompletedAt:       model.CompletedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func tasksToDomain(models []taskModel) []domain.Task {
	tasks := make([]domain.Task, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, taskToDomain(model))
	}
	return tasks
}

type StoryRepository struct {
	db *gormsqlite.DB
}

func NewStoryRepository(db *gormsqlite.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Create(ctx context.Context, story domain.Story) (domain.Story, error) {
	now := time.Now().UTC()
	model := storyModel{
		ID:          uuid.NewString(),
		ProjectID:   story.ProjectID,
		Title:       story.Title,
		Description: story.Description,
		Status:      string(story.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var count int64
		if err := tx.Model(&storyModel{}).
			Where("project_id = ? AND status = ?", story.ProjectID, model.Status).
			Count(&count).Error; err != nil {
			return fmt.Errorf("count column: %w", err)
		}
		model.SortOrder = int(count)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("create story: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Story{}, err
	}
	return storyToDomain(model), nil
}

func (r *StoryRepository) Get(ctx context.Context, id string) (domain.Story, error) {
	var model storyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Story{}, domain.ErrNotFound
		}
		return domain.Story{}, fmt.Errorf("get story: %w", err)
	}
	return storyToDomain(model), nil
}

func (r *StoryRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Story, error) {
	var models []storyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("project_id = ?", projectID).
			Order("status ASC, sort_order ASC").
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return storiesToDomain(models), nil
}

func (r *StoryRepository) Update(ctx context.Context, story domain.Story) (domain.Story, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&storyModel{}).Where("id = ?", story.ID).Updates(map[string]any{
			"title":       story.Title,
			"description": story.Description,
			"updated_at":  time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update story: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Story{}, err
	}
	return r.Get(ctx, story.ID)
}

func (r *StoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var current storyModel
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load story: %w", err)
		}

		if err := tx.Where("id = ?", id).Delete(&storyModel{}).Error; err != nil {
			return fmt.Errorf("delete story: %w", err)
		}

		if err := tx.Model(&storyModel{}).
			Where("project_id = ? AND status = ? AND sort_order > ?",
				current.ProjectID, current.Status, current.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return fmt.Errorf("close column gap: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *StoryRepository) Move(ctx context.Context, id string, status domain.BoardStatus, order int) ([]domain.Story, error) {
	var result []domain.Story

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var current storyModel
		if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("load story: %w", err)
		}

		statusChanged := current.Status != string(status)

		var destCount int64
		if err := tx.Model(&storyModel{}).
			Where("project_id = ? AND status = ? AND id <> ?", current.ProjectID, string(status), id).
			Count(&destCount).Error; err != nil {
			return fmt.Errorf("count destination column: %w", err)
		}
		newOrder := domain.ClampOrder(order, int(destCount))

		now := time.Now().UTC()
		completedAt := domain.StampCompletion(domain.BoardStatus(current.Status), status, current.CompletedAt, now)

		var shifts []domain.OrderAssignment
		if statusChanged {
			var siblings []storyModel
			if err := tx.Where("project_id = ? AND status = ? AND id <> ?", current.ProjectID, string(status), id).
				Order("sort_order ASC").Find(&siblings).Error; err != nil {
				return fmt.Errorf("load destination column: %w", err)
			}
			ids := make([]string, 0, len(siblings))
			for _, m := range siblings {
				ids = append(ids, m.ID)
			}
			shifts = domain.CrossColumnOrders(ids, newOrder)
		} else {
			var column []storyModel
			if err := tx.Where("project_id = ? AND status = ?", current.ProjectID, current.Status).
				Order("sort_order ASC").Find(&column).Error; err != nil {
				return fmt.Errorf("load column: %w", err)
			}
			items := make([]domain.OrderAssignment, 0, len(column))
			for _, m := range column {
				items = append(items, domain.OrderAssignment{ID: m.ID, Order: m.SortOrder})
			}
			shifts = domain.SameColumnShift(items, id, newOrder)
		}

		if err := tx.Model(&storyModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":       string(status),
			"sort_order":   newOrder,
			"completed_at": completedAt,
			"updated_at":   now,
		}).Error; err != nil {
			return fmt.Errorf("move story: %w", err)
		}

		if statusChanged {
			if err := tx.Model(&storyModel{}).
				Where("project_id = ? AND status = ? AND sort_order > ?",
					current.ProjectID, current.Status, current.SortOrder).
				UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
				return fmt.Errorf("close source column gap: %w", err)
			}
		}

		for _, assign := range shifts {
			if err := tx.Model(&storyModel{}).Where("id = ?", assign.ID).
				UpdateColumn("sort_order", assign.Order).Error; err != nil {
				return fmt.Errorf("repair column: %w", err)
			}
		}

		var models []storyModel
		if err := tx.Where("project_id = ?", current.ProjectID).
			Order("status ASC, sort_order ASC").
			Find(&models).Error; err != nil {
			return fmt.Errorf("reload board: %w", err)
		}
		result = storiesToDomain(models)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func storyToDomain(model storyModel) domain.Story {
	return domain.Story{
		ID:          model.ID,
		ProjectID:   model.ProjectID,
		Title:       model.Title,
		Description: model.Description,
		Status:      domain.BoardStatus(model.Status),
		Order:       model.SortOrder,
		CompletedAt: model.CompletedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func storiesToDomain(models []storyModel) []domain.Story {
	stories := make([]domain.Story, 0, len(models))
	for _, model := range models {
		stories = append(stories, storyToDomain(model))
	}
	return stories
}
