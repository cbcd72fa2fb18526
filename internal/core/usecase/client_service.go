package usecase

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

type ClientService struct {
	repo ports.ClientRepository
}

func NewClientService(repo ports.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	if err := client.Validate(); err != nil {
		return domain.Client{}, err
	}
	return s.repo.Create(ctx, client)
}

func (s *ClientService) Get(ctx context.Context, id string) (domain.Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *ClientService) List(ctx context.Context, limit int) ([]domain.Client, error) {
	return s.repo.List(ctx, clampLimit(limit))
}

func (s *ClientService) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	if err := client.Validate(); err != nil {
		return domain.Client{}, err
	}
	return s.repo.Update(ctx, client)
}

func (s *ClientService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

type ContractService struct {
	repo    ports.ContractRepository
	clients ports.ClientRepository
}

func NewContractService(repo ports.ContractRepository, clients ports.ClientRepository) *ContractService {
	return &ContractService{repo: repo, clients: clients}
}

func (s *ContractService) Create(ctx context.Context, contract domain.Contract) (domain.Contract, error) {
	if contract.Status == "" {
		contract.Status = domain.ContractDraft
	}
	if err := contract.Validate(); err != nil {
		return domain.Contract{}, err
	}
	if _, err := s.clients.Get(ctx, contract.ClientID); err != nil {
		return domain.Contract{}, err
	}
	return s.repo.Create(ctx, contract)
}

func (s *ContractService) Get(ctx context.Context, id string) (domain.Contract, error) {
	return s.repo.Get(ctx, id)
}

func (s *ContractService) List(ctx context.Context, clientID string, limit int) ([]domain.Contract, error) {
	return s.repo.List(ctx, clientID, clampLimit(limit))
}

func (s *ContractService) Update(ctx context.Context, contract domain.Contract) (domain.Contract, error) {
	if err := contract.Validate(); err != nil {
		return domain.Contract{}, err
	}
	return s.repo.Update(ctx, contract)
}

func (s *ContractService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
