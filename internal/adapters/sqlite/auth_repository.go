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

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name;not null"`
	MemberID     *string   `gorm:"column:member_id"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (userModel) TableName() string {
	return "users"
}

type apiKeyModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	Name              string     `gorm:"column:name;not null"`
	Prefix            string     `gorm:"column:prefix;not null"`
	KeyHash           string     `gorm:"column:key_hash;not null"`
	Permissions       string     `gorm:"column:permissions;not null"`
	InternalProjectID *string    `gorm:"column:internal_project_id"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	Active            bool       `gorm:"column:active;not null"`
	LastUsedAt        *time.Time `gorm:"column:last_used_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

type UserRepository struct {
	db *gormsqlite.DB
}

func NewUserRepository(db *gormsqlite.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	model := userModel{
		ID:           uuid.NewString(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		MemberID:     user.MemberID,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var count int64
		if err := tx.Model(&userModel{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var model userModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("email = ?", email).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return userToDomain(model), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	var model userModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return userToDomain(model), nil
}

func userToDomain(model userModel) domain.User {
	return domain.User{
		ID:           model.ID,
		Email:        model.Email,
		PasswordHash: model.PasswordHash,
		Name:         model.Name,
		MemberID:     model.MemberID,
		CreatedAt:    model.CreatedAt,
	}
}

type APIKeyRepository struct {
	db *gormsqlite.DB
}

func NewAPIKeyRepository(db *gormsqlite.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	perms, err := json.Marshal(key.Permissions)
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("encode permissions: %w", err)
	}

	model := apiKeyModel{
		ID:                uuid.NewString(),
		Name:              key.Name,
		Prefix:            key.Prefix,
		KeyHash:           key.KeyHash,
		Permissions:       string(perms),
		InternalProjectID: key.InternalProjectID,
		ExpiresAt:         key.ExpiresAt,
		Active:            key.Active,
		CreatedAt:         time.Now().UTC(),
	}

	err = r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return apiKeyToDomain(model)
}

func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("key_hash = ?", keyHash).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key by hash: %w", err)
	}
	return apiKeyToDomain(model)
}

func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key: %w", err)
	}
	return apiKeyToDomain(model)
}

func (r *APIKeyRepository) List(ctx context.Context) ([]domain.APIKey, error) {
	var models []apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("created_at ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}

	keys := make([]domain.APIKey, 0, len(models))
	for _, model := range models {
		key, err := apiKeyToDomain(model)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (r *APIKeyRepository) Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error) {
	perms, err := json.Marshal(key.Permissions)
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("encode permissions: %w", err)
	}

	err = r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&apiKeyModel{}).Where("id = ?", key.ID).Updates(map[string]any{
			"name":                key.Name,
			"permissions":         string(perms),
			"internal_project_id": key.InternalProjectID,
			"expires_at":          key.ExpiresAt,
			"active":              key.Active,
		})
		if res.Error != nil {
			return fmt.Errorf("update api key: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.APIKey{}, err
	}
	return r.FindByID(ctx, key.ID)
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&apiKeyModel{})
		if res.Error != nil {
			return fmt.Errorf("delete api key: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	now := time.Now().UTC()
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&apiKeyModel{}).Where("id = ?", id).UpdateColumn("last_used_at", &now).Error
	})
	if err != nil {
		return fmt.Errorf("touch api key last used: %w", err)
	}
	return nil
}

func apiKeyToDomain(model apiKeyModel) (domain.APIKey, error) {
	var perms []domain.Permission
	if err := json.Unmarshal([]byte(model.Permissions), &perms); err != nil {
		return domain.APIKey{}, fmt.Errorf("decode permissions: %w", err)
	}
	return domain.APIKey{
		ID:                model.ID,
		Name:              model.Name,
		Prefix:            model.Prefix,
		KeyHash:           model.KeyHash,
		Permissions:       perms,
		InternalProjectID: model.InternalProjectID,
		ExpiresAt:         model.ExpiresAt,
		Active:            model.Active,
		LastUsedAt:        model.LastUsedAt,
		CreatedAt:         model.CreatedAt,
	}, nil
}
