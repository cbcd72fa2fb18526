package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/usecase"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	MemberID *string `json:"member_id"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	MemberID  *string `json:"member_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type apiKeyRequest struct {
	Name              string   `json:"name"`
	Permissions       []string `json:"permissions"`
	InternalProjectID *string  `json:"internal_project_id"`
	ExpiresAt         *string  `json:"expires_at"`
}

type apiKeyUpdateRequest struct {
	Name              *string  `json:"name"`
	Permissions       []string `json:"permissions"`
	InternalProjectID *string  `json:"internal_project_id"`
	ClearProjectScope bool     `json:"clear_project_scope"`
	ExpiresAt         *string  `json:"expires_at"`
	ClearExpiry       bool     `json:"clear_expiry"`
	Active            *bool    `json:"active"`
}

type apiKeyResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Prefix            string   `json:"prefix"`
	Permissions       []string `json:"permissions"`
	InternalProjectID *string  `json:"internal_project_id,omitempty"`
	ExpiresAt         *string  `json:"expires_at,omitempty"`
	Active            bool     `json:"active"`
	LastUsedAt        *string  `json:"last_used_at,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	http.SetCookie(w, sessionCookie(token, int(usecase.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, sessionCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	auth := authFromContext(r.Context())
	switch auth.Kind {
	case domain.AuthKindJWT:
		writeJSON(w, http.StatusOK, map[string]any{
			"kind":      string(auth.Kind),
			"user_id":   auth.Session.UserID,
			"email":     auth.Session.Email,
			"member_id": auth.Session.MemberID,
		})
	case domain.AuthKindAPIKey:
		writeJSON(w, http.StatusOK, map[string]any{
			"kind": string(auth.Kind),
			"key":  toAPIKeyResponse(*auth.Key),
		})
	default:
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Auth.Register(r.Context(), req.Email, req.Password, req.Name, req.MemberID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.Auth.ListAPIKeys(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]apiKeyResponse, 0, len(keys))
	for _, key := range keys {
		result = append(result, toAPIKeyResponse(key))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expiresAt, ok := parseTimePtr(w, req.ExpiresAt)
	if !ok {
		return
	}

	key, raw, err := h.svc.Auth.CreateAPIKey(r.Context(), req.Name, toPermissions(req.Permissions), req.InternalProjectID, expiresAt)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	// The raw key appears in this response and nowhere else.
	writeJSON(w, http.StatusCreated, map[string]any{
		"key":     toAPIKeyResponse(key),
		"raw_key": raw,
	})
}

func (h *Handler) updateAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req apiKeyUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expiresAt, ok := parseTimePtr(w, req.ExpiresAt)
	if !ok {
		return
	}

	upd := usecase.APIKeyUpdate{
		Name:              req.Name,
		InternalProjectID: req.InternalProjectID,
		ClearProjectScope: req.ClearProjectScope,
		ExpiresAt:         expiresAt,
		ClearExpiry:       req.ClearExpiry,
		Active:            req.Active,
	}
	if req.Permissions != nil {
		upd.Permissions = toPermissions(req.Permissions)
	}

	key, err := h.svc.Auth.UpdateAPIKey(r.Context(), id, upd)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAPIKeyResponse(key))
}

func (h *Handler) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Auth.DeleteAPIKey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		MemberID:  user.MemberID,
		CreatedAt: formatTime(user.CreatedAt),
	}
}

func toAPIKeyResponse(key domain.APIKey) apiKeyResponse {
	perms := make([]string, 0, len(key.Permissions))
	for _, p := range key.Permissions {
		perms = append(perms, string(p))
	}
	return apiKeyResponse{
		ID:                key.ID,
		Name:              key.Name,
		Prefix:            key.Prefix,
		Permissions:       perms,
		InternalProjectID: key.InternalProjectID,
		ExpiresAt:         formatTimePtr(key.ExpiresAt),
		Active:            key.Active,
		LastUsedAt:        formatTimePtr(key.LastUsedAt),
		CreatedAt:         formatTime(key.CreatedAt),
	}
}

func toPermissions(raw []string) []domain.Permission {
	perms := make([]domain.Permission, 0, len(raw))
	for _, p := range raw {
		perms = append(perms, domain.Permission(p))
	}
	return perms
}

func parseTimePtr(w http.ResponseWriter, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return nil, false
	}
	return &parsed, true
}
