package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type memberRequest struct {
	Name      string `json:"name"`
	RoleTitle string `json:"role_title"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
}

type memberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RoleTitle string `json:"role_title"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type meetingRequest struct {
	Title       string   `json:"title"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	Location    string   `json:"location"`
	AttendeeIDs []string `json:"attendee_ids"`
	ClientID    *string  `json:"client_id"`
	Notes       string   `json:"notes"`
}

type meetingResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	Location    string   `json:"location"`
	AttendeeIDs []string `json:"attendee_ids"`
	ClientID    *string  `json:"client_id,omitempty"`
	Notes       string   `json:"notes"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type suggestionRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status"`
}

type suggestionResponse struct {
	ID        string  `json:"id"`
	AuthorID  *string `json:"author_id,omitempty"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	members, err := h.svc.Members.List(r.Context(), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]memberResponse, 0, len(members))
	for _, member := range members {
		result = append(result, toMemberResponse(member))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.svc.Members.Create(r.Context(), domain.Member{
		Name:      req.Name,
		RoleTitle: req.RoleTitle,
		Email:     req.Email,
		Active:    req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.Members.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.svc.Members.Update(r.Context(), domain.Member{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		RoleTitle: req.RoleTitle,
		Email:     req.Email,
		Active:    req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(member))
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Members.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listMeetings(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	meetings, err := h.svc.Meetings.List(r.Context(), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]meetingResponse, 0, len(meetings))
	for _, meeting := range meetings {
		result = append(result, toMeetingResponse(meeting))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, ok := h.decodeMeeting(w, r, "")
	if !ok {
		return
	}

	created, err := h.svc.Meetings.Create(r.Context(), meeting)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMeetingResponse(created))
}

func (h *Handler) getMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.svc.Meetings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingResponse(meeting))
}

func (h *Handler) updateMeeting(w http.ResponseWriter, r *http.Request) {
	meeting, ok := h.decodeMeeting(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	updated, err := h.svc.Meetings.Update(r.Context(), meeting)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingResponse(updated))
}

func (h *Handler) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Meetings.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) decodeMeeting(w http.ResponseWriter, r *http.Request, id string) (domain.Meeting, bool) {
	var req meetingRequest
	if !decodeJSON(w, r, &req) {
		return domain.Meeting{}, false
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return domain.Meeting{}, false
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp")
		return domain.Meeting{}, false
	}

	return domain.Meeting{
		ID:          id,
		Title:       req.Title,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Location:    req.Location,
		AttendeeIDs: req.AttendeeIDs,
		ClientID:    req.ClientID,
		Notes:       req.Notes,
	}, true
}

func (h *Handler) listSuggestions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	suggestions, err := h.svc.Suggestions.List(r.Context(), domain.SuggestionStatus(r.URL.Query().Get("status")), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]suggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		result = append(result, toSuggestionResponse(suggestion))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createSuggestion(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	suggestion := domain.Suggestion{
		Title:  req.Title,
		Body:   req.Body,
		Status: domain.SuggestionStatus(req.Status),
	}
	// A session author is recorded; key-channel submissions stay anonymous.
	if auth := authFromContext(r.Context()); auth.Kind == domain.AuthKindJWT && auth.Session.UserID != "" {
		userID := auth.Session.UserID
		suggestion.AuthorID = &userID
	}

	created, err := h.svc.Suggestions.Create(r.Context(), suggestion)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSuggestionResponse(created))
}

func (h *Handler) getSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.svc.Suggestions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestionResponse(suggestion))
}

func (h *Handler) updateSuggestion(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.Suggestions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	var req suggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current.Title = req.Title
	current.Body = req.Body
	current.Status = domain.SuggestionStatus(req.Status)

	updated, err := h.svc.Suggestions.Update(r.Context(), current)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestionResponse(updated))
}

func (h *Handler) deleteSuggestion(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Suggestions.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func toMemberResponse(member domain.Member) memberResponse {
	return memberResponse{
		ID:        member.ID,
		Name:      member.Name,
		RoleTitle: member.RoleTitle,
		Email:     member.Email,
		Active:    member.Active,
		CreatedAt: formatTime(member.CreatedAt),
		UpdatedAt: formatTime(member.UpdatedAt),
	}
}

func toMeetingResponse(meeting domain.Meeting) meetingResponse {
	return meetingResponse{
		ID:          meeting.ID,
		Title:       meeting.Title,
		StartsAt:    formatTime(meeting.StartsAt),
		EndsAt:      formatTime(meeting.EndsAt),
		Location:    meeting.Location,
		AttendeeIDs: meeting.AttendeeIDs,
		ClientID:    meeting.ClientID,
		Notes:       meeting.Notes,
		CreatedAt:   formatTime(meeting.CreatedAt),
		UpdatedAt:   formatTime(meeting.UpdatedAt),
	}
}

func toSuggestionResponse(suggestion domain.Suggestion) suggestionResponse {
	return suggestionResponse{
		ID:        suggestion.ID,
		AuthorID:  suggestion.AuthorID,
		Title:     suggestion.Title,
		Body:      suggestion.Body,
		Status:    string(suggestion.Status),
		CreatedAt: formatTime(suggestion.CreatedAt),
		UpdatedAt: formatTime(suggestion.UpdatedAt),
	}
}
