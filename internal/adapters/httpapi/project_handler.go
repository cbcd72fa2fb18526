package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type projectRequest struct {
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type projectResponse struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type internalProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type internalProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	projects, err := h.svc.Projects.List(r.Context(), r.URL.Query().Get("client_id"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		result = append(result, toProjectResponse(project))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.svc.Projects.Create(r.Context(), domain.Project{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectResponse(project))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(project))
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current.Name = req.Name
	current.Description = req.Description
	current.Status = domain.ProjectStatus(req.Status)

	updated, err := h.svc.Projects.Update(r.Context(), current)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(updated))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Projects.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *Handler) listInternalProjects(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	projects, err := h.svc.InternalProjects.List(r.Context(), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]internalProjectResponse, 0, len(projects))
	for _, project := range projects {
		result = append(result, toInternalProjectResponse(project))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) createInternalProject(w http.ResponseWriter, r *http.Request) {
	var req internalProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.svc.InternalProjects.Create(r.Context(), domain.InternalProject{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInternalProjectResponse(project))
}

func (h *Handler) getInternalProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.svc.InternalProjects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInternalProjectResponse(project))
}

func (h *Handler) updateInternalProject(w http.ResponseWriter, r *http.Request) {
	var req internalProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.svc.InternalProjects.Update(r.Context(), domain.InternalProject{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInternalProjectResponse(project))
}

func (h *Handler) deleteInternalProject(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.InternalProjects.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func toProjectResponse(project domain.Project) projectResponse {
	return projectResponse{
		ID:          project.ID,
		ClientID:    project.ClientID,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		CreatedAt:   formatTime(project.CreatedAt),
		UpdatedAt:   formatTime(project.UpdatedAt),
	}
}

func toInternalProjectResponse(project domain.InternalProject) internalProjectResponse {
	return internalProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Active:      project.Active,
		CreatedAt:   formatTime(project.CreatedAt),
		UpdatedAt:   formatTime(project.UpdatedAt),
	}
}
