package ports

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type LeadRepository interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Get(ctx context.Context, id string) (domain.Lead, error)
	List(ctx context.Context, status domain.LeadStatus, limit int) ([]domain.Lead, error)
	Update(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Get(ctx context.Context, id string) (domain.Client, error)
	List(ctx context.Context, limit int) ([]domain.Client, error)
	Update(ctx context.Context, client domain.Client) (domain.Client, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ContractRepository interface {
	Create(ctx context.Context, contract domain.Contract) (domain.Contract, error)
	Get(ctx context.Context, id string) (domain.Contract, error)
	List(ctx context.Context, clientID string, limit int) ([]domain.Contract, error)
	Update(ctx context.Context, contract domain.Contract) (domain.Contract, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) (domain.Project, error)
	Get(ctx context.Context, id string) (domain.Project, error)
	List(ctx context.Context, clientID string, limit int) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) (domain.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type InternalProjectRepository interface {
	Create(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error)
	Get(ctx context.Context, id string) (domain.InternalProject, error)
	List(ctx context.Context, limit int) ([]domain.InternalProject, error)
	Update(ctx context.Context, project domain.InternalProject) (domain.InternalProject, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member domain.Member) (domain.Member, error)
	Get(ctx context.Context, id string) (domain.Member, error)
	List(ctx context.Context, limit int) ([]domain.Member, error)
	Update(ctx context.Context, member domain.Member) (domain.Member, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	Get(ctx context.Context, id string) (domain.Transaction, error)
	List(ctx context.Context, txType domain.TransactionType, limit int) ([]domain.Transaction, error)
	Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MeetingRepository interface {
	Create(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error)
	Get(ctx context.Context, id string) (domain.Meeting, error)
	List(ctx context.Context, limit int) ([]domain.Meeting, error)
	Update(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error)
	Get(ctx context.Context, id string) (domain.Suggestion, error)
	List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error)
	Update(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error)
	Delete(ctx context.Context, id string) (bool, error)
}
