package usecase

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

type ProjectService struct {
	repo    ports.ProjectRepository
	clients ports.ClientRepository
}

func NewProjectService(repo ports.ProjectRepository, clients ports.ClientRepository) *ProjectService {
	return &ProjectService{repo: repo, clients: clients}
}

func (s *ProjectService) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	if project.Status == "" {
		project.Status = domain.ProjectActive
	}
	if err := project.Validate(); err != nil {
		return domain.Project{}, err
	}
	if _, err := s.clients.Get(ctx, project.ClientID); err != nil {
		return domain.Project{}, err
	}
	return s.repo.Create(ctx, project)
}

func (s *ProjectService) Get(ctx context.Context, id string) (domain.Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, clientID string, limit int) ([]domain.Project, error) {
	return s.repo.List(ctx, clientID, clampLimit(limit))
}

func (s *ProjectService) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	if err := project.Validate(); err != nil {
		return domain.Project{}, err
	}
	return s.repo.Update(ctx, project)
}

func (s *ProjectService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

type InternalProjectService struct {
	repo ports.InternalProjectRepository
}

func NewInternalProjectService(repo ports.InternalProjectRepository) *InternalProjectService {
	return &InternalProjectService{repo: repo}
}

func (s *InternalProjectService) Create(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error) {
	if err := project.Validate(); err != nil {
		return domain.InternalProject{}, err
	}
	return s.repo.Create(ctx, project)
}

func (s *InternalProjectService) Get(ctx context.Context, id string) (domain.InternalProject, error) {
	return s.repo.Get(ctx, id)
}

func (s *InternalProjectService) List(ctx context.Context, limit int) ([]domain.InternalProject, error) {
	return s.repo.List(ctx, clampLimit(limit))
}

func (s *InternalProjectService) Update(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error) {
	if err := project.Validate(); err != nil {
		return domain.InternalProject{}, err
	}
	return s.repo.Update(ctx, project)
}

func (s *InternalProjectService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
