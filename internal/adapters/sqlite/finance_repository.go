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

type transactionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Type        string    `gorm:"column:type;not null"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	Currency    string    `gorm:"column:currency;not null"`
	Category    string    `gorm:"column:category;not null"`
	ProjectID   *string   `gorm:"column:project_id"`
	ClientID    *string   `gorm:"column:client_id"`
	OccurredAt  time.Time `gorm:"column:occurred_at;not null"`
	Note        string    `gorm:"column:note;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

type TransactionRepository struct {
	db *gormsqlite.DB
}

func NewTransactionRepository(db *gormsqlite.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	now := time.Now().UTC()
	model := transactionModel{
		ID:          uuid.NewString(),
		Type:        string(t.Type),
		AmountCents: t.AmountCents,
		Currency:    t.Currency,
		Category:    t.Category,
		ProjectID:   t.ProjectID,
		ClientID:    t.ClientID,
		OccurredAt:  t.OccurredAt,
		Note:        t.Note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return transactionToDomain(model), nil
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (domain.Transaction, error) {
	var model transactionModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return transactionToDomain(model), nil
}

func (r *TransactionRepository) List(ctx context.Context, txType domain.TransactionType, limit int) ([]domain.Transaction, error) {
	var models []transactionModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("occurred_at DESC").Limit(limit)
		if txType != "" {
			q = q.Where("type = ?", string(txType))
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(models))
	for _, model := range models {
		txs = append(txs, transactionToDomain(model))
	}
	return txs, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&transactionModel{}).Where("id = ?", t.ID).Updates(map[string]any{
			"type":         string(t.Type),
			"amount_cents": t.AmountCents,
			"currency":     t.Currency,
			"category":     t.Category,
			"project_id":   t.ProjectID,
			"client_id":    t.ClientID,
			"occurred_at":  t.OccurredAt,
			"note":         t.Note,
			"updated_at":   time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return r.Get(ctx, t.ID)
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&transactionModel{})
		if res.Error != nil {
			return fmt.Errorf("delete transaction: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func transactionToDomain(model transactionModel) domain.Transaction {
	return domain.Transaction{
		ID:          model.ID,
		Type:        domain.TransactionType(model.Type),
		AmountCents: model.AmountCents,
		Currency:    model.Currency,
		Category:    model.Category,
		ProjectID:   model.ProjectID,
		ClientID:    model.ClientID,
		OccurredAt:  model.OccurredAt,
		Note:        model.Note,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
