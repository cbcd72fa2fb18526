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

type projectModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ClientID    string    `gorm:"column:client_id;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Status      string    `gorm:"column:status;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (projectModel) TableName() string {
	return "projects"
}

type internalProjectModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Active      bool      `gorm:"column:active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (internalProjectModel) TableName() string {
	return "internal_projects"
}

type ProjectRepository struct {
	db *gormsqlite.DB
}

func NewProjectRepository(db *gormsqlite.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	now := time.Now().UTC()
	model := projectModel{
		ID:          uuid.NewString(),
		ClientID:    project.ClientID,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	return projectToDomain(model), nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (domain.Project, error) {
	var model projectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	return projectToDomain(model), nil
}

func (r *ProjectRepository) List(ctx context.Context, clientID string, limit int) ([]domain.Project, error) {
	var models []projectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("created_at DESC").Limit(limit)
		if clientID != "" {
			q = q.Where("client_id = ?", clientID)
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(models))
	for _, model := range models {
		projects = append(projects, projectToDomain(model))
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&projectModel{}).Where("id = ?", project.ID).Updates(map[string]any{
			"name":        project.Name,
			"description": project.Description,
			"status":      string(project.Status),
			"updated_at":  time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}
	return r.Get(ctx, project.ID)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&projectModel{})
		if res.Error != nil {
			return fmt.Errorf("delete project: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func projectToDomain(model projectModel) domain.Project {
	return domain.Project{
		ID:          model.ID,
		ClientID:    model.ClientID,
		Name:        model.Name,
		Description: model.Description,
		Status:      domain.ProjectStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type InternalProjectRepository struct {
	db *gormsqlite.DB
}

func NewInternalProjectRepository(db *gormsqlite.DB) *InternalProjectRepository {
	return &InternalProjectRepository{db: db}
}

func (r *InternalProjectRepository) Create(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error) {
	now := time.Now().UTC()
	model := internalProjectModel{
		ID:          uuid.NewString(),
		Name:        project.Name,
		Description: project.Description,
		Active:      project.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.InternalProject{}, fmt.Errorf("create internal project: %w", err)
	}
	return internalProjectToDomain(model), nil
}

func (r *InternalProjectRepository) Get(ctx context.Context, id string) (domain.InternalProject, error) {
	var model internalProjectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.InternalProject{}, domain.ErrNotFound
		}
		return domain.InternalProject{}, fmt.Errorf("get internal project: %w", err)
	}
	return internalProjectToDomain(model), nil
}

func (r *InternalProjectRepository) List(ctx context.Context, limit int) ([]domain.InternalProject, error) {
	var models []internalProjectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("created_at DESC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list internal projects: %w", err)
	}

	projects := make([]domain.InternalProject, 0, len(models))
	for _, model := range models {
		projects = append(projects, internalProjectToDomain(model))
	}
	return projects, nil
}

func (r *InternalProjectRepository) Update(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&internalProjectModel{}).Where("id = ?", project.ID).Updates(map[string]any{
			"name":        project.Name,
			"description": project.Description,
			"active":      project.Active,
			"updated_at":  time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update internal project: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.InternalProject{}, err
	}
	return r.Get(ctx, project.ID)
}

func (r *InternalProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&internalProjectModel{})
		if res.Error != nil {
			return fmt.Errorf("delete internal project: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func internalProjectToDomain(model internalProjectModel) domain.InternalProject {
	return domain.InternalProject{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
