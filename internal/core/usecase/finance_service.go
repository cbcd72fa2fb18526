package usecase

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

type TransactionService struct {
	repo ports.TransactionRepository
}

func NewTransactionService(repo ports.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

func (s *TransactionService) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return s.repo.Create(ctx, tx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (domain.Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, txType domain.TransactionType, limit int) ([]domain.Transaction, error) {
	if txType != "" && !txType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.List(ctx, txType, clampLimit(limit))
}

func (s *TransactionService) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return s.repo.Update(ctx, tx)
}

func (s *TransactionService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
