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

type memberModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	RoleTitle string    `gorm:"column:role_title;not null"`
	Email     string    `gorm:"column:email;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (memberModel) TableName() string {
	return "members"
}

type meetingModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	StartsAt    time.Time `gorm:"column:starts_at;not null"`
	EndsAt      time.Time `gorm:"column:ends_at;not null"`
	Location    string    `gorm:"column:location;not null"`
	AttendeeIDs string    `gorm:"column:attendee_ids;not null"`
	ClientID    *string   `gorm:"column:client_id"`
	Notes       string    `gorm:"column:notes;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (meetingModel) TableName() string {
	return "meetings"
}

type suggestionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AuthorID  *string   `gorm:"column:author_id"`
	Title     string    `gorm:"column:title;not null"`
	Body      string    `gorm:"column:body;not null"`
	Status    string    `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (suggestionModel) TableName() string {
	return "suggestions"
}

type MemberRepository struct {
	db *gormsqlite.DB
}

func NewMemberRepository(db *gormsqlite.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member domain.Member) (domain.Member, error) {
	now := time.Now().UTC()
	model := memberModel{
		ID:        uuid.NewString(),
		Name:      member.Name,
		RoleTitle: member.RoleTitle,
		Email:     member.Email,
		Active:    member.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Member{}, fmt.Errorf("create member: %w", err)
	}
	return memberToDomain(model), nil
}

func (r *MemberRepository) Get(ctx context.Context, id string) (domain.Member, error) {
	var model memberModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Member{}, domain.ErrNotFound
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	return memberToDomain(model), nil
}

func (r *MemberRepository) List(ctx context.Context, limit int) ([]domain.Member, error) {
	var models []memberModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("name ASC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]domain.Member, 0, len(models))
	for _, model := range models {
		members = append(members, memberToDomain(model))
	}
	return members, nil
}

func (r *MemberRepository) Update(ctx context.Context, member domain.Member) (domain.Member, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&memberModel{}).Where("id = ?", member.ID).Updates(map[string]any{
			"name":       member.Name,
			"role_title": member.RoleTitle,
			"email":      member.Email,
			"active":     member.Active,
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update member: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	return r.Get(ctx, member.ID)
}

func (r *MemberRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&memberModel{})
		if res.Error != nil {
			return fmt.Errorf("delete member: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func memberToDomain(model memberModel) domain.Member {
	return domain.Member{
		ID:        model.ID,
		Name:      model.Name,
		RoleTitle: model.RoleTitle,
		Email:     model.Email,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

type MeetingRepository struct {
	db *gormsqlite.DB
}

func NewMeetingRepository(db *gormsqlite.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) Create(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	attendees, err := json.Marshal(meeting.AttendeeIDs)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("encode attendees: %w", err)
	}

	now := time.Now().UTC()
	model := meetingModel{
		ID:          uuid.NewString(),
		Title:       meeting.Title,
		StartsAt:    meeting.StartsAt,
		EndsAt:      meeting.EndsAt,
		Location:    meeting.Location,
		AttendeeIDs: string(attendees),
		ClientID:    meeting.ClientID,
		Notes:       meeting.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("create meeting: %w", err)
	}
	return meetingToDomain(model)
}

func (r *MeetingRepository) Get(ctx context.Context, id string) (domain.Meeting, error) {
	var model meetingModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Meeting{}, domain.ErrNotFound
		}
		return domain.Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	return meetingToDomain(model)
}

func (r *MeetingRepository) List(ctx context.Context, limit int) ([]domain.Meeting, error) {
	var models []meetingModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Order("starts_at DESC").Limit(limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	meetings := make([]domain.Meeting, 0, len(models))
	for _, model := range models {
		meeting, err := meetingToDomain(model)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (r *MeetingRepository) Update(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	attendees, err := json.Marshal(meeting.AttendeeIDs)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("encode attendees: %w", err)
	}

	err = r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&meetingModel{}).Where("id = ?", meeting.ID).Updates(map[string]any{
			"title":        meeting.Title,
			"starts_at":    meeting.StartsAt,
			"ends_at":      meeting.EndsAt,
			"location":     meeting.Location,
			"attendee_ids": string(attendees),
			"client_id":    meeting.ClientID,
			"notes":        meeting.Notes,
			"updated_at":   time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update meeting: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Meeting{}, err
	}
	return r.Get(ctx, meeting.ID)
}

func (r *MeetingRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&meetingModel{})
		if res.Error != nil {
			return fmt.Errorf("delete meeting: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func meetingToDomain(model meetingModel) (domain.Meeting, error) {
	var attendees []string
	if model.AttendeeIDs != "" {
		if err := json.Unmarshal([]byte(model.AttendeeIDs), &attendees); err != nil {
			return domain.Meeting{}, fmt.Errorf("decode attendees: %w", err)
		}
	}
	return domain.Meeting{
		ID:          model.ID,
		Title:       model.Title,
		StartsAt:    model.StartsAt,
		EndsAt:      model.EndsAt,
		Location:    model.Location,
		AttendeeIDs: attendees,
		ClientID:    model.ClientID,
		Notes:       model.Notes,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

type SuggestionRepository struct {
	db *gormsqlite.DB
}

func NewSuggestionRepository(db *gormsqlite.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Create(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error) {
	now := time.Now().UTC()
	model := suggestionModel{
		ID:        uuid.NewString(),
		AuthorID:  suggestion.AuthorID,
		Title:     suggestion.Title,
		Body:      suggestion.Body,
		Status:    string(suggestion.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("create suggestion: %w", err)
		}
		return enqueueNotification(tx, "suggestions", "suggestion.created", map[string]any{
			"suggestion_id": model.ID,
			"title":         model.Title,
		})
	})
	if err != nil {
		return domain.Suggestion{}, err
	}
	return suggestionToDomain(model), nil
}

func (r *SuggestionRepository) Get(ctx context.Context, id string) (domain.Suggestion, error) {
	var model suggestionModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("id = ?", id).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Suggestion{}, domain.ErrNotFound
		}
		return domain.Suggestion{}, fmt.Errorf("get suggestion: %w", err)
	}
	return suggestionToDomain(model), nil
}

func (r *SuggestionRepository) List(ctx context.Context, status domain.SuggestionStatus, limit int) ([]domain.Suggestion, error) {
	var models []suggestionModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		q := tx.Order("created_at DESC").Limit(limit)
		if status != "" {
			q = q.Where("status = ?", string(status))
		}
		return q.Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(models))
	for _, model := range models {
		suggestions = append(suggestions, suggestionToDomain(model))
	}
	return suggestions, nil
}

func (r *SuggestionRepository) Update(ctx context.Context, suggestion domain.Suggestion) (domain.Suggestion, error) {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&suggestionModel{}).Where("id = ?", suggestion.ID).Updates(map[string]any{
			"title":      suggestion.Title,
			"body":       suggestion.Body,
			"status":     string(suggestion.Status),
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return fmt.Errorf("update suggestion: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Suggestion{}, err
	}
	return r.Get(ctx, suggestion.ID)
}

func (r *SuggestionRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("id = ?", id).Delete(&suggestionModel{})
		if res.Error != nil {
			return fmt.Errorf("delete suggestion: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func suggestionToDomain(model suggestionModel) domain.Suggestion {
	return domain.Suggestion{
		ID:        model.ID,
		AuthorID:  model.AuthorID,
		Title:     model.Title,
		Body:      model.Body,
		Status:    domain.SuggestionStatus(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
