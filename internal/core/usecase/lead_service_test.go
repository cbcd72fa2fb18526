package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type stubLeadRepo struct {
	leads map[string]domain.Lead
	next  int
}

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{leads: make(map[string]domain.Lead)}
}

func (r *stubLeadRepo) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	r.next++
	lead.ID = "l-" + string(rune('0'+r.next))
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *stubLeadRepo) Get(_ context.Context, id string) (domain.Lead, error) {
	lead, ok := r.leads[id]
	if !ok {
		return domain.Lead{}, domain.ErrNotFound
	}
	return lead, nil
}

func (r *stubLeadRepo) List(_ context.Context, status domain.LeadStatus, _ int) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, lead := range r.leads {
		if status == "" || lead.Status == status {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (r *stubLeadRepo) Update(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	if _, ok := r.leads[lead.ID]; !ok {
		return domain.Lead{}, domain.ErrNotFound
	}
	r.leads[lead.ID] = lead
	return lead, nil
}

func (r *stubLeadRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.leads[id]; !ok {
		return false, nil
	}
	delete(r.leads, id)
	return true, nil
}

type stubClientRepo struct {
	clients []domain.Client
}

func (r *stubClientRepo) Create(_ context.Context, client domain.Client) (domain.Client, error) {
	client.ID = "c-1"
	r.clients = append(r.clients, client)
	return client, nil
}

func (r *stubClientRepo) Get(_ context.Context, id string) (domain.Client, error) {
	for _, client := range r.clients {
		if client.ID == id {
			return client, nil
		}
	}
	return domain.Client{}, domain.ErrNotFound
}

func (r *stubClientRepo) List(_ context.Context, _ int) ([]domain.Client, error) {
	return r.clients, nil
}

func (r *stubClientRepo) Update(_ context.Context, client domain.Client) (domain.Client, error) {
	return client, nil
}

func (r *stubClientRepo) Delete(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func newTestLeadService(t *testing.T) (*LeadService, *stubLeadRepo, *stubClientRepo) {
	t.Helper()
	leads := newStubLeadRepo()
	clients := &stubClientRepo{}
	svc, err := NewLeadService(leads, clients)
	if err != nil {
		t.Fatalf("new lead service: %v", err)
	}
	return svc, leads, clients
}

func TestIntakeValidSubmission(t *testing.T) {
	svc, _, _ := newTestLeadService(t)

	payload := json.RawMessage(`{
		"name": "Jane Roe",
		"company": "Roe Consulting",
		"email": "jane@example.com",
		"message": "Need a website",
		"custom_fields": {"budget": "10k"}
	}`)

	lead, err := svc.Intake(context.Background(), payload)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if lead.Source != "intake" {
		t.Errorf("source = %q, want intake", lead.Source)
	}
	if lead.Status != domain.LeadNew {
		t.Errorf("status = %q, want new", lead.Status)
	}
	if lead.Notes != "Need a website" {
		t.Errorf("notes = %q", lead.Notes)
	}
}

func TestIntakeSchemaViolations(t *testing.T) {
	svc, _, _ := newTestLeadService(t)

	tests := []struct {
		name    string
		payload string
	}{
		{name: "missing required email", payload: `{"name": "Jane"}`},
		{name: "unknown field", payload: `{"name": "Jane", "email": "j@x.com", "admin": true}`},
		{name: "wrong type", payload: `{"name": 42, "email": "j@x.com"}`},
		{name: "not an object", payload: `[1,2,3]`},
		{name: "invalid json", payload: `{"name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Intake(context.Background(), json.RawMessage(tt.payload))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestConvertLead(t *testing.T) {
	svc, leads, _ := newTestLeadService(t)

	lead, err := svc.Create(context.Background(), domain.Lead{Name: "Jane", Email: "j@x.com", Company: "Acme"})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	client, err := svc.Convert(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if client.Company != "Acme" || client.ContactEmail != "j@x.com" {
		t.Errorf("unexpected client: %+v", client)
	}
	if client.LeadID == nil || *client.LeadID != lead.ID {
		t.Error("client should reference the source lead")
	}

	stored, _ := leads.Get(context.Background(), lead.ID)
	if stored.Status != domain.LeadConverted {
		t.Errorf("lead status = %q, want converted", stored.Status)
	}

	if _, err := svc.Convert(context.Background(), lead.ID); err != domain.ErrConflict {
		t.Errorf("second convert should fail with ErrConflict, got %v", err)
	}
}

func TestConvertFallsBackToLeadName(t *testing.T) {
	svc, _, _ := newTestLeadService(t)

	lead, err := svc.Create(context.Background(), domain.Lead{Name: "Solo Dev", Email: "s@x.com"})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	client, err := svc.Convert(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if client.Company != "Solo Dev" {
		t.Errorf("company = %q, want lead name fallback", client.Company)
	}
}

func TestLeadListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestLeadService(t)
	if _, err := svc.List(context.Background(), "bogus", 10); err != domain.ErrInvalidStatus {
		t.Errorf("unknown status should fail with ErrInvalidStatus, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: 100},
		{in: -5, want: 100},
		{in: 50, want: 50},
		{in: 5000, want: 1000},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
