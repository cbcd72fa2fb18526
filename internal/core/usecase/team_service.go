package usecase

import (
	"context"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

type MemberService struct {
	repo ports.MemberRepository
}

func NewMemberService(repo ports.MemberRepository) *MemberService {
	return &MemberService{repo: repo}
}

func (s *MemberService) Create(ctx context.Context, member domain.Member) (domain.Member, error) {
	if err := member.Validate(); err != nil {
		return domain.Member{}, err
	}
	return s.repo.Create(ctx, member)
}

func (s *MemberService) Get(ctx context.Context, id string) (domain.Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *MemberService) List(ctx context.Context, limit int) ([]domain.Member, error) {
	return s.repo.List(ctx, clampLimit(limit))
}

func (s *MemberService) Update(ctx context.Context, member domain.Member) (domain.Member, error) {
	if err := member.Validate(); err != nil {
		return domain.Member{}, err
	}
	return s.repo.Update(ctx, member)
}

func (s *MemberService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

type MeetingService struct {
	repo ports.MeetingRepository
}

func NewMeetingService(repo ports.MeetingRepository) *MeetingService {
	return &MeetingService{repo: repo}
}

func (s *MeetingService) Create(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	if err := meeting.Validate(); err != nil {
		return domain.Meeting{}, err
	}
	return s.repo.Create(ctx, meeting)
}

func (s *MeetingService) Get(ctx context.Context, id string) (domain.Meeting, error) {
	return s.repo.Get(ctx, id)
}

func (s *MeetingService) List(ctx context.Context, limit int) ([]domain.Meeting, error) {
	return s.repo.List(ctx, clampLimit(limit))
}

func (s *MeetingService) Update(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	if err := meeting.Validate(); err != nil {
		return domain.Meeting{}, err
	}
	return s.repo.Update(ctx, meeting)
}

func (s *MeetingService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

type SuggestionService struct {
	repo ports.SuggestionRepository
}

func NewSuggestionService(repo ports.SuggestionRepository) *SuggestionService {
	return &SuggestionService{repo: repo}
}

func (s *SuggestionService) Create(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error) {
	if suggestion.Status == "" {
		suggestion.Status = domain.SuggestionOpen
	}
	if err := suggestion.Validate(); err != nil {
		return domain.Suggestion{}, err
	}
	return s.repo.Create(ctx, suggestion)
}

func (s *SuggestionService) Get(ctx context.Context, id string) (domain.Suggestion, error) {
	return s.repo.Get(ctx, id)
}

func (s *SuggestionService) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, status, clampLimit(limit))
}

func (s *SuggestionService) Update(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error) {
	if err := suggestion.Validate(); err != nil {
		return domain.Suggestion{}, err
	}
	return s.repo.Update(ctx, suggestion)
}

func (s *SuggestionService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
