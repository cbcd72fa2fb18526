package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

// leadIntakeSchema constrains what the public intake endpoint accepts. The
// dashboard's own lead form goes through Create and is validated in domain.
const leadIntakeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["name", "email"],
	"additionalProperties": false,
	"properties": {
		"name":    {"type": "string", "minLength": 1, "maxLength": 200},
		"company": {"type": "string", "maxLength": 200},
		"email":   {"type": "string", "format": "email", "minLength": 3, "maxLength": 254},
		"message": {"type": "string", "maxLength": 4000},
		"custom_fields": {"type": "object"}
	}
}`

type LeadService struct {
	leads   ports.LeadRepository
	clients ports.ClientRepository
	intake  *santhosh.Schema
}

func NewLeadService(leads ports.LeadRepository, clients ports.ClientRepository) (*LeadService, error) {
	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("intake.json", strings.NewReader(leadIntakeSchema)); err != nil {
		return nil, fmt.Errorf("add intake schema: %w", err)
	}
	schema, err := compiler.Compile("intake.json")
	if err != nil {
		return nil, fmt.Errorf("compile intake schema: %w", err)
	}
	return &LeadService{leads: leads, clients: clients, intake: schema}, nil
}

func (s *LeadService) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	if lead.Status == "" {
		lead.Status = domain.LeadNew
	}
	if err := lead.Validate(); err != nil {
		return domain.Lead{}, err
	}
	return s.leads.Create(ctx, lead)
}

func (s *LeadService) Get(ctx context.Context, id string) (domain.Lead, error) {
	return s.leads.Get(ctx, id)
}

func (s *LeadService) List(ctx context.Context, status domain.LeadStatus, limit int) ([]domain.Lead, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.leads.List(ctx, status, clampLimit(limit))
}

func (s *LeadService) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	if err := lead.Validate(); err != nil {
		return domain.Lead{}, err
	}
	return s.leads.Update(ctx, lead)
}

func (s *LeadService) Delete(ctx context.Context, id string) (bool, error) {
	return s.leads.Delete(ctx, id)
}

type intakeSubmission struct {
	Name         string          `json:"name"`
	Company      string          `json:"company"`
	Email        string          `json:"email"`
	Message      string          `json:"message"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

// Intake accepts a public lead submission after validating it against the
// intake JSON schema. Schema violations surface as domain.ErrInvalidInput.
func (s *LeadService) Intake(ctx context.Context, payload json.RawMessage) (domain.Lead, error) {
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return domain.Lead{}, domain.ErrInvalidInput
	}
	if err := s.intake.Validate(value); err != nil {
		return domain.Lead{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var sub intakeSubmission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return domain.Lead{}, domain.ErrInvalidInput
	}

	return s.leads.Create(ctx, domain.Lead{
		Name:         sub.Name,
		Company:      sub.Company,
		Email:        sub.Email,
		Source:       "intake",
		Status:       domain.LeadNew,
		Notes:        sub.Message,
		CustomFields: sub.CustomFields,
	})
}

// Convert turns a qualified lead into a client and marks the lead converted.
// Converting twice is a conflict.
func (s *LeadService) Convert(ctx context.Context, id string) (domain.Client, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}
	if lead.Status == domain.LeadConverted {
		return domain.Client{}, domain.ErrConflict
	}

	company := lead.Company
	if company == "" {
		company = lead.Name
	}
	client, err := s.clients.Create(ctx, domain.Client{
		Company:      company,
		ContactName:  lead.Name,
		ContactEmail: lead.Email,
		LeadID:       &lead.ID,
	})
	if err != nil {
		return domain.Client{}, err
	}

	lead.Status = domain.LeadConverted
	if _, err := s.leads.Update(ctx, lead); err != nil {
		return domain.Client{}, fmt.Errorf("mark lead converted: %w", err)
	}
	return client, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
