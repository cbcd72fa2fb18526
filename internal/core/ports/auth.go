package ports

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type UserRepository interface {
	// Create persists a new user and returns domain.ErrConflict when the
	// email is already registered.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type APIKeyRepository interface {
	Create(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	FindByHash(ctx context.Context, keyHash string) (domain.APIKey, error)
	FindByID(ctx context.Context, id string) (domain.APIKey, error)
	List(ctx context.Context) ([]domain.APIKey, error)
	Update(ctx context.Context, key domain.APIKey) (domain.APIKey, error)
	Delete(ctx context.Context, id string) (bool, error)
	// TouchLastUsed stamps last_used_at; callers treat failure as non-fatal.
	TouchLastUsed(ctx context.Context, id string) error
}
