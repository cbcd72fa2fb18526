package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forgeworks/crmapi/internal/adapters/sqlite/gormsqlite"
	"github.com/forgeworks/crmapi/internal/core/domain"
)

type leadModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Company      string    `gorm:"column:company;not null"`
	Email        string    `gorm:"column:email;not null"`
	Source       string    `gorm:"column:source;not null"`
	Status       string    `gorm:"column:status;not null"`
	Notes        string    `gorm:"column:notes;not null"`
	CustomFields string    `gorm:"column:custom_fields;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (leadModel) TableName() string {
	return "leads"
}

type clientModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Company      string    `gorm:"column:company;not null"`
	ContactName  string    `gorm:"column:contact_name;not null"`
	ContactEmail string    `gorm:"column:contact_email;not null"`
	LeadID       *string   `gorm:"column:lead_id"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (clientModel) TableName() string {
	return "clients"
}

type contractModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	ClientID   string     `gorm:"column:client_id;not null"`
	Title      string     `gorm:"column:title;not null"`
	ValueCents int64      `gorm:"column:value_cents;not null"`
	Currency   string     `gorm:"column:currency;not null"`
	Status     string     `gorm:"column:status;not null"`
	SignedAt   *time.Time `gorm:"column:signed_at"`
	ValidUntil *time.Time `gorm:"column:valid_until"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
}

func (contractModel) TableName() string {
	return "contracts"
}

type LeadRepository struct {
	db *gormsqlite.DB
}

func NewLeadRepository(db *gormsqlite.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	now := time.Now().UTC()
	custom := "{}"
	if len(lead.CustomFields) > 0 {
		custom = string(lead.CustomFields)
	}
	model := leadModel{
		ID:           uuid.NewString(),
		Name:         lead.Name,
		Company:      lead.Company,
		Email:        lead.Email,
		Source:       lead.Source,
		Status:       string(lead.Status),
		Notes:        lead.Notes,
		CustomFields: custom,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
		return enqueueNotification(tx, "leads", "lead.created", map[string]any{
			"lead_id": model.ID,
			"name":    model.Name,
			"email":   model.Email,
			"source":  model.Source,
		})
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return leadToDomain(model), nil
}

func (r *LeadRepository) Get(ctx context.Context, id string) (domain.Lead, error) {
	var model leadModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Lead{}, domain.ErrNotFound
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return leadToDomain(model), nil
}

func (r *LeadRepository) List(ctx context.Context, status domain.LeadStatus, limit int) ([]domain.Lead, error) {
	var models []leadModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("created_at DESC").Limit(limit)
		if status != "" {
			q = q.Where("status = ?", string(status))
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	leads := make([]domain.Lead, 0, len(models))
	for _, model := range models {
		leads = append(leads, leadToDomain(model))
	}
	return leads, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	custom := "{}"
	if len(lead.CustomFields) > 0 {
		custom = string(lead.CustomFields)
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&leadModel{}).Where("id = ?", lead.ID).Updates(map[string]any{
			"name":          lead.Name,
			"company":       lead.Company,
			"email":         lead.Email,
			"source":        lead.Source,
			"status":        string(lead.Status),
			"notes":         lead.Notes,
			"custom_fields": custom,
			"updated_at":    time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update lead: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return r.Get(ctx, lead.ID)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&leadModel{})
		if res.Error != nil {
			return fmt.Errorf("delete lead: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func leadToDomain(model leadModel) domain.Lead {
	return domain.Lead{
		ID:           model.ID,
		Name:         model.Name,
		Company:      model.Company,
		Email:        model.Email,
		Source:       model.Source,
		Status:       domain.LeadStatus(model.Status),
		Notes:        model.Notes,
		CustomFields: json.RawMessage(model.CustomFields),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

type ClientRepository struct {
	db *gormsqlite.DB
}

func NewClientRepository(db *gormsqlite.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	now := time.Now().UTC()
	model := clientModel{
		ID:           uuid.NewString(),
		Company:      client.Company,
		ContactName:  client.ContactName,
		ContactEmail: client.ContactEmail,
		LeadID:       client.LeadID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}
	return clientToDomain(model), nil
}

func (r *ClientRepository) Get(ctx context.Context, id string) (domain.Client, error) {
	var model clientModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Client{}, domain.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("get client: %w", err)
	}
	return clientToDomain(model), nil
}

func (r *ClientRepository) List(ctx context.Context, limit int) ([]domain.Client, error) {
	var models []clientModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("created_at DESC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]domain.Client, 0, len(models))
	for _, model := range models {
		clients = append(clients, clientToDomain(model))
	}
	return clients, nil
}

func (r *ClientRepository) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&clientModel{}).Where("id = ?", client.ID).Updates(map[string]any{
			"company":       client.Company,
			"contact_name":  client.ContactName,
			"contact_email": client.ContactEmail,
			"updated_at":    time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update client: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Client{}, err
	}
	return r.Get(ctx, client.ID)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&clientModel{})
		if res.Error != nil {
			return fmt.Errorf("delete client: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func clientToDomain(model clientModel) domain.Client {
	return domain.Client{
		ID:           model.ID,
		Company:      model.Company,
		ContactName:  model.ContactName,
		ContactEmail: model.ContactEmail,
		LeadID:       model.LeadID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

type ContractRepository struct {
	db *gormsqlite.DB
}

func NewContractRepository(db *gormsqlite.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract domain.Contract) (domain.Contract, error) {
	now := time.Now().UTC()
	model := contractModel{
		ID:         uuid.NewString(),
		ClientID:   contract.ClientID,
		Title:      contract.Title,
		ValueCents: contract.ValueCents,
		Currency:   contract.Currency,
		Status:     string(contract.Status),
		SignedAt:   contract.SignedAt,
		ValidUntil: contract.ValidUntil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Contract{}, fmt.Errorf("create contract: %w", err)
	}
	return contractToDomain(model), nil
}

func (r *ContractRepository) Get(ctx context.Context, id string) (domain.Contract, error) {
	var model contractModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Contract{}, domain.ErrNotFound
		}
		return domain.Contract{}, fmt.Errorf("get contract: %w", err)
	}
	return contractToDomain(model), nil
}

func (r *ContractRepository) List(ctx context.Context, clientID string, limit int) ([]domain.Contract, error) {
	var models []contractModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("created_at DESC").Limit(limit)
		if clientID != "" {
			q = q.Where("client_id = ?", clientID)
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	contracts := make([]domain.Contract, 0, len(models))
	for _, model := range models {
		contracts = append(contracts, contractToDomain(model))
	}
	return contracts, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract domain.Contract) (domain.Contract, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&contractModel{}).Where("id = ?", contract.ID).Updates(map[string]any{
			"title":       contract.Title,
			"value_cents": contract.ValueCents,
			"currency":    contract.Currency,
			"status":      string(contract.Status),
			"signed_at":   contract.SignedAt,
			"valid_until": contract.ValidUntil,
			"updated_at":  time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update contract: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}
	return r.Get(ctx, contract.ID)
}

func (r *ContractRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&contractModel{})
		if res.Error != nil {
			return fmt.Errorf("delete contract: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func contractToDomain(model contractModel) domain.Contract {
	return domain.Contract{
		ID:         model.ID,
		ClientID:   model.ClientID,
		Title:      model.Title,
		ValueCents: model.ValueCents,
		Currency:   model.Currency,
		Status:     domain.ContractStatus(model.Status),
		SignedAt:   model.SignedAt,
		ValidUntil: model.ValidUntil,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
