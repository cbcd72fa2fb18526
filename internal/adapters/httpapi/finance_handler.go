package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type transactionRequest struct {
	Type        string  `json:"type"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	ProjectID   *string `json:"project_id"`
	ClientID    *string `json:"client_id"`
	OccurredAt  string  `json:"occurred_at"`
	Note        string  `json:"note"`
}

type transactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	ProjectID   *string `json:"project_id,omitempty"`
	ClientID    *string `json:"client_id,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
	Note        string  `json:"note"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	txs, err := h.svc.Transactions.List(r.Context(), domain.TransactionType(r.URL.Query().Get("type")), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		result = append(result, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.decodeTransaction(w, r, "")
	if !ok {
		return
	}

	created, err := h.svc.Transactions.Create(r.Context(), tx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.decodeTransaction(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	updated, err := h.svc.Transactions.Update(r.Context(), tx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Transactions.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) decodeTransaction(w http.ResponseWriter, r *http.Request, id string) (domain.Transaction, bool) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return domain.Transaction{}, false
	}

	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		ID:          id,
		Type:        domain.TransactionType(req.Type),
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Category:    req.Category,
		ProjectID:   req.ProjectID,
		ClientID:    req.ClientID,
		OccurredAt:  occurredAt,
		Note:        req.Note,
	}, true
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		AmountCents: tx.AmountCents,
		Currency:    tx.Currency,
		Category:    tx.Category,
		ProjectID:   tx.ProjectID,
		ClientID:    tx.ClientID,
		OccurredAt:  formatTime(tx.OccurredAt),
		Note:        tx.Note,
		CreatedAt:   formatTime(tx.CreatedAt),
		UpdatedAt:   formatTime(tx.UpdatedAt),
	}
}
