package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
	Status      string  `json:"status"`
}

type storyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type moveRequest struct {
	Status string `json:"status"`
	Order  int    `json:"order"`
}

type taskResponse struct {
	ID                string  `json:"id"`
	InternalProjectID string  `json:"internal_project_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	AssigneeID        *string `json:"assignee_id,omitempty"`
	Status            string  `json:"status"`
	Order             int     `json:"order"`
	CompletedAt       *string `json:"completed_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type storyResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Order       int     `json:"order"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	internalProjectID := chi.URLParam(r, "id")
	if !authFromContext(r.Context()).HasProjectAccess(internalProjectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tasks, err := h.svc.Board.ListTasks(r.Context(), internalProjectID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toTaskResponses(tasks)})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	internalProjectID := chi.URLParam(r, "id")
	if !authFromContext(r.Context()).HasProjectAccess(internalProjectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.svc.Board.CreateTask(r.Context(), domain.Task{
		InternalProjectID: internalProjectID,
		Title:             req.Title,
		Description:       req.Description,
		AssigneeID:        req.AssigneeID,
		Status:            domain.BoardStatus(req.Status),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.AssigneeID = req.AssigneeID

	updated, err := h.svc.Board.UpdateTask(r.Context(), task)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Board.DeleteTask(r.Context(), task.ID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) moveTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tasks, err := h.svc.Board.MoveTask(r.Context(), task.ID, domain.BoardStatus(req.Status), req.Order)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toTaskResponses(tasks)})
}

// loadTask fetches the card and enforces the caller's project scope against
// its parent internal project.
func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request) (domain.Task, bool) {
	task, err := h.svc.Board.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return domain.Task{}, false
	}
	if !authFromContext(r.Context()).HasProjectAccess(task.InternalProjectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return domain.Task{}, false
	}
	return task, true
}

// loadStory fetches the card and enforces the caller's project scope against
// its parent client project.
func (h *Handler) loadStory(w http.ResponseWriter, r *http.Request) (domain.Story, bool) {
	story, err := h.svc.Board.GetStory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return domain.Story{}, false
	}
	if !authFromContext(r.Context()).HasProjectAccess(story.ProjectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return domain.Story{}, false
	}
	return story, true
}

func (h *Handler) listStories(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if !authFromContext(r.Context()).HasProjectAccess(projectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stories, err := h.svc.Board.ListStories(r.Context(), projectID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toStoryResponses(stories)})
}

func (h *Handler) createStory(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if !authFromContext(r.Context()).HasProjectAccess(projectID) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req storyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := h.svc.Board.CreateStory(r.Context(), domain.Story{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.BoardStatus(req.Status),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStoryResponse(story))
}

func (h *Handler) getStory(w http.ResponseWriter, r *http.Request) {
	story, ok := h.loadStory(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStoryResponse(story))
}

func (h *Handler) updateStory(w http.ResponseWriter, r *http.Request) {
	story, ok := h.loadStory(w, r)
	if !ok {
		return
	}

	var req storyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story.Title = req.Title
	story.Description = req.Description

	updated, err := h.svc.Board.UpdateStory(r.Context(), story)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoryResponse(updated))
}

func (h *Handler) deleteStory(w http.ResponseWriter, r *http.Request) {
	story, ok := h.loadStory(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.Board.DeleteStory(r.Context(), story.ID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) moveStory(w http.ResponseWriter, r *http.Request) {
	story, ok := h.loadStory(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stories, err := h.svc.Board.MoveStory(r.Context(), story.ID, domain.BoardStatus(req.Status), req.Order)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toStoryResponses(stories)})
}

func toTaskResponse(task domain.Task) taskResponse {
	return taskResponse{
		ID:                task.ID,
		InternalProjectID: task.InternalProjectID,
		Title:             task.Title,
		Description:       task.Description,
		AssigneeID:        task.AssigneeID,
		Status:            string(task.Status),
		Order:             task.Order,
		CompletedAt:       formatTimePtr(task.CompletedAt),
		CreatedAt:         formatTime(task.CreatedAt),
		UpdatedAt:         formatTime(task.UpdatedAt),
	}
}

func toTaskResponses(tasks []domain.Task) []taskResponse {
	result := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, toTaskResponse(task))
	}
	return result
}

func toStoryResponse(story domain.Story) storyResponse {
	return storyResponse{
		ID:          story.ID,
		ProjectID:   story.ProjectID,
		Title:       story.Title,
		Description: story.Description,
		Status:      string(story.Status),
		Order:       story.Order,
		CompletedAt: formatTimePtr(story.CompletedAt),
		CreatedAt:   formatTime(story.CreatedAt),
		UpdatedAt:   formatTime(story.UpdatedAt),
	}
}

func toStoryResponses(stories []domain.Story) []storyResponse {
	result := make([]storyResponse, 0, len(stories))
	for _, story := range stories {
		result = append(result, toStoryResponse(story))
	}
	return result
}
