package domain

import (
	"encoding/json"
	"time"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadLost      LeadStatus = "lost"
	LeadConverted LeadStatus = "converted"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadLost, LeadConverted:
		return true
	}
	return false
}

type Lead struct {
	ID           string
	Name         string
	Company      string
	Email        string
	Source       string
	Status       LeadStatus
	Notes        string
	CustomFields json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l Lead) Validate() error {
	if l.Name == "" || l.Email == "" {
		return ErrInvalidInput
	}
	if !l.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(l.CustomFields) > 0 && !json.Valid(l.CustomFields) {
		return ErrInvalidInput
	}
	return nil
}

type Client struct {
	ID           string
	Company      string
	ContactName  string
	ContactEmail string
	LeadID       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Client) Validate() error {
	if c.Company == "" {
		return ErrInvalidInput
	}
	return nil
}

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractSent       ContractStatus = "sent"
	ContractSigned     ContractStatus = "signed"
	ContractTerminated ContractStatus = "terminated"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractSent, ContractSigned, ContractTerminated:
		return true
	}
	return false
}

type Contract struct {
	ID         string
	ClientID   string
	Title      string
	ValueCents int64
	Currency   string
	Status     ContractStatus
	SignedAt   *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c Contract) Validate() error {
	if c.ClientID == "" || c.Title == "" {
		return ErrInvalidInput
	}
	if c.ValueCents < 0 {
		return ErrInvalidInput
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectPaused   ProjectStatus = "paused"
	ProjectFinished ProjectStatus = "finished"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectFinished:
		return true
	}
	return false
}

// Project is client-facing work; its board items are stories.
type Project struct {
	ID          string
	ClientID    string
	Name        string
	Description string
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Project) Validate() error {
	if p.ClientID == "" || p.Name == "" {
		return ErrInvalidInput
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// InternalProject is an internal initiative; its board items are tasks.
type InternalProject struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p InternalProject) Validate() error {
	if p.Name == "" {
		return ErrInvalidInput
	}
	return nil
}

type Member struct {
	ID        string
	Name      string
	RoleTitle string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Member) Validate() error {
	if m.Name == "" || m.Email == "" {
		return ErrInvalidInput
	}
	return nil
}

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

type Transaction struct {
	ID          string
	Type        TransactionType
	AmountCents int64
	Currency    string
	Category    string
	ProjectID   *string
	ClientID    *string
	OccurredAt  time.Time
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidInput
	}
	if t.AmountCents <= 0 || t.Currency == "" {
		return ErrInvalidInput
	}
	if t.OccurredAt.IsZero() {
		return ErrInvalidInput
	}
	return nil
}

type Meeting struct {
	ID          string
	Title       string
	StartsAt    time.Time
	EndsAt      time.Time
	Location    string
	AttendeeIDs []string
	ClientID    *string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Meeting) Validate() error {
	if m.Title == "" || m.StartsAt.IsZero() || m.EndsAt.IsZero() {
		return ErrInvalidInput
	}
	if m.EndsAt.Before(m.StartsAt) {
		return ErrInvalidInput
	}
	return nil
}

type SuggestionStatus string

const (
	SuggestionOpen     SuggestionStatus = "open"
	SuggestionPlanned  SuggestionStatus = "planned"
	SuggestionDone     SuggestionStatus = "done"
	SuggestionDeclined SuggestionStatus = "declined"
)

func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionOpen, SuggestionPlanned, SuggestionDone, SuggestionDeclined:
		return true
	}
	return false
}

type Suggestion struct {
	ID        string
	AuthorID  *string
	Title     string
	Body      string
	Status    SuggestionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Suggestion) Validate() error {
	if s.Title == "" {
		return ErrInvalidInput
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
