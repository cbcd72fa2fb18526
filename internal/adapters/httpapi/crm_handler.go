package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type leadRequest struct {
	Name         string          `json:"name"`
	Company      string          `json:"company"`
	Email        string          `json:"email"`
	Source       string          `json:"source"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes"`
	CustomFields json.RawMessage `json:"custom_fields"`
}

type leadResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Company      string          `json:"company"`
	Email        string          `json:"email"`
	Source       string          `json:"source"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type clientRequest struct {
	Company      string `json:"company"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
}

type clientResponse struct {
	ID           string  `json:"id"`
	Company      string  `json:"company"`
	ContactName  string  `json:"contact_name"`
	ContactEmail string  `json:"contact_email"`
	LeadID       *string `json:"lead_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type contractRequest struct {
	ClientID   string  `json:"client_id"`
	Title      string  `json:"title"`
	ValueCents int64   `json:"value_cents"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	SignedAt   *string `json:"signed_at"`
	ValidUntil *string `json:"valid_until"`
}

type contractResponse struct {
	ID         string  `json:"id"`
	ClientID   string  `json:"client_id"`
	Title      string  `json:"title"`
	ValueCents int64   `json:"value_cents"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	SignedAt   *string `json:"signed_at,omitempty"`
	ValidUntil *string `json:"valid_until,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func (h *Handler) leadIntake(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var payload json.RawMessage
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	lead, err := h.svc.Leads.Intake(r.Context(), payload)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeadResponse(lead))
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	leads, err := h.svc.Leads.List(r.Context(), domain.LeadStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]leadResponse, 0, len(leads))
	for _, lead := range leads {
		result = append(result, toLeadResponse(lead))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.svc.Leads.Create(r.Context(), domain.Lead{
		Name:         req.Name,
		Company:      req.Company,
		Email:        req.Email,
		Source:       req.Source,
		Status:       domain.LeadStatus(req.Status),
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeadResponse(lead))
}

func (h *Handler) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.Leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

func (h *Handler) updateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.svc.Leads.Update(r.Context(), domain.Lead{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		Company:      req.Company,
		Email:        req.Email,
		Source:       req.Source,
		Status:       domain.LeadStatus(req.Status),
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

func (h *Handler) deleteLead(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Leads.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) convertLead(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.Leads.Convert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(client))
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	clients, err := h.svc.Clients.List(r.Context(), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		result = append(result, toClientResponse(client))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.svc.Clients.Create(r.Context(), domain.Client{
		Company:      req.Company,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(client))
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.Clients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client))
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.svc.Clients.Update(r.Context(), domain.Client{
		ID:           chi.URLParam(r, "id"),
		Company:      req.Company,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client))
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Clients.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	contracts, err := h.svc.Contracts.List(r.Context(), r.URL.Query().Get("client_id"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]contractResponse, 0, len(contracts))
	for _, contract := range contracts {
		result = append(result, toContractResponse(contract))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createContract(w http.ResponseWriter, r *http.Request) {
	contract, ok := h.decodeContract(w, r, "")
	if !ok {
		return
	}

	created, err := h.svc.Contracts.Create(r.Context(), contract)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractResponse(created))
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.svc.Contracts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

func (h *Handler) updateContract(w http.ResponseWriter, r *http.Request) {
	contract, ok := h.decodeContract(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	updated, err := h.svc.Contracts.Update(r.Context(), contract)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractResponse(updated))
}

func (h *Handler) deleteContract(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Contracts.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) decodeContract(w http.ResponseWriter, r *http.Request, id string) (domain.Contract, bool) {
	var req contractRequest
	if !decodeJSON(w, r, &req) {
		return domain.Contract{}, false
	}

	signedAt, ok := parseTimePtr(w, req.SignedAt)
	if !ok {
		return domain.Contract{}, false
	}
	validUntil, ok := parseTimePtr(w, req.ValidUntil)
	if !ok {
		return domain.Contract{}, false
	}

	return domain.Contract{
		ID:         id,
		ClientID:   req.ClientID,
		Title:      req.Title,
		ValueCents: req.ValueCents,
		Currency:   req.Currency,
		Status:     domain.ContractStatus(req.Status),
		SignedAt:   signedAt,
		ValidUntil: validUntil,
	}, true
}

func toLeadResponse(lead domain.Lead) leadResponse {
	return leadResponse{
		ID:           lead.ID,
		Name:         lead.Name,
		Company:      lead.Company,
		Email:        lead.Email,
		Source:       lead.Source,
		Status:       string(lead.Status),
		Notes:        lead.Notes,
		CustomFields: lead.CustomFields,
		CreatedAt:    formatTime(lead.CreatedAt),
		UpdatedAt:    formatTime(lead.UpdatedAt),
	}
}

func toClientResponse(client domain.Client) clientResponse {
	return clientResponse{
		ID:           client.ID,
		Company:      client.Company,
		ContactName:  client.ContactName,
		ContactEmail: client.ContactEmail,
		LeadID:       client.LeadID,
		CreatedAt:    formatTime(client.CreatedAt),
		UpdatedAt:    formatTime(client.UpdatedAt),
	}
}

func toContractResponse(contract domain.Contract) contractResponse {
	return contractResponse{
		ID:         contract.ID,
		ClientID:   contract.ClientID,
		Title:      contract.Title,
		ValueCents: contract.ValueCents,
		Currency:   contract.Currency,
		Status:     string(contract.Status),
		SignedAt:   formatTimePtr(contract.SignedAt),
		ValidUntil: formatTimePtr(contract.ValidUntil),
		CreatedAt:  formatTime(contract.CreatedAt),
		UpdatedAt:  formatTime(contract.UpdatedAt),
	}
}
