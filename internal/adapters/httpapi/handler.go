package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/usecase"
)

type ctxKey string

const (
	timeFormat             = "2006-01-02T15:04:05.999999999Z07:00"
	authCtxKey      ctxKey = "auth_result"
	maxJSONBodySize        = 1 << 20

	sessionCookieName = "session"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Auth             *usecase.AuthService
	Leads            *usecase.LeadService
	Clients          *usecase.ClientService
	Contracts        *usecase.ContractService
	Projects         *usecase.ProjectService
	InternalProjects *usecase.InternalProjectService
	Board            *usecase.BoardService
	Members          *usecase.MemberService
	Meetings         *usecase.MeetingService
	Suggestions      *usecase.SuggestionService
	Transactions     *usecase.TransactionService
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)

	// Public endpoints, rate limited per client IP.
	r.Group(func(pr chi.Router) {
		pr.Use(httprate.LimitByIP(10, time.Minute))
		pr.Post("/v1/auth/login", h.login)
		pr.Post("/v1/leads/intake", h.leadIntake)
	})

	r.Post("/v1/auth/logout", h.logout)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(""))
		pr.Get("/v1/auth/me", h.me)
	})

	// Admin surface: user registration and key management.
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermFullAccess))
		pr.Post("/v1/auth/register", h.register)
		pr.Get("/v1/api-keys", h.listAPIKeys)
		pr.Post("/v1/api-keys", h.createAPIKey)
		pr.Put("/v1/api-keys/{id}", h.updateAPIKey)
		pr.Delete("/v1/api-keys/{id}", h.deleteAPIKey)
	})

	h.crud(r, "/v1/leads", domain.PermLeadsRead, domain.PermLeadsWrite, crudHandlers{
		list: h.listLeads, create: h.createLead, get: h.getLead, update: h.updateLead, delete: h.deleteLead,
	})
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermLeadsWrite))
		pr.Post("/v1/leads/{id}/convert", h.convertLead)
	})

	h.crud(r, "/v1/clients", domain.PermClientsRead, domain.PermClientsWrite, crudHandlers{
		list: h.listClients, create: h.createClient, get: h.getClient, update: h.updateClient, delete: h.deleteClient,
	})
	h.crud(r, "/v1/contracts", domain.PermContractsRead, domain.PermContractsWrite, crudHandlers{
		list: h.listContracts, create: h.createContract, get: h.getContract, update: h.updateContract, delete: h.deleteContract,
	})
	h.crud(r, "/v1/projects", domain.PermProjectsRead, domain.PermProjectsWrite, crudHandlers{
		list: h.listProjects, create: h.createProject, get: h.getProject, update: h.updateProject, delete: h.deleteProject,
	})
	h.crud(r, "/v1/internal-projects", domain.PermProjectsRead, domain.PermProjectsWrite, crudHandlers{
		list: h.listInternalProjects, create: h.createInternalProject, get: h.getInternalProject, update: h.updateInternalProject, delete: h.deleteInternalProject,
	})
	h.crud(r, "/v1/members", domain.PermMembersRead, domain.PermMembersWrite, crudHandlers{
		list: h.listMembers, create: h.createMember, get: h.getMember, update: h.updateMember, delete: h.deleteMember,
	})
	h.crud(r, "/v1/meetings", domain.PermMeetingsRead, domain.PermMeetingsWrite, crudHandlers{
		list: h.listMeetings, create: h.createMeeting, get: h.getMeeting, update: h.updateMeeting, delete: h.deleteMeeting,
	})
	h.crud(r, "/v1/suggestions", domain.PermSuggestionsRead, domain.PermSuggestionsWrite, crudHandlers{
		list: h.listSuggestions, create: h.createSuggestion, get: h.getSuggestion, update: h.updateSuggestion, delete: h.deleteSuggestion,
	})
	h.crud(r, "/v1/transactions", domain.PermTransactionsRead, domain.PermTransactionsWrite, crudHandlers{
		list: h.listTransactions, create: h.createTransaction, get: h.getTransaction, update: h.updateTransaction, delete: h.deleteTransaction,
	})

	// Task board, scoped by internal project.
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermTasksRead))
		pr.Get("/v1/internal-projects/{id}/tasks", h.listTasks)
		pr.Get("/v1/tasks/{id}", h.getTask)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermTasksWrite))
		pr.Post("/v1/internal-projects/{id}/tasks", h.createTask)
		pr.Put("/v1/tasks/{id}", h.updateTask)
		pr.Delete("/v1/tasks/{id}", h.deleteTask)
		pr.Post("/v1/tasks/{id}/move", h.moveTask)
	})

	// Story board, scoped by client project.
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermStoriesRead))
		pr.Get("/v1/projects/{id}/stories", h.listStories)
		pr.Get("/v1/stories/{id}", h.getStory)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(domain.PermStoriesWrite))
		pr.Post("/v1/projects/{id}/stories", h.createStory)
		pr.Put("/v1/stories/{id}", h.updateStory)
		pr.Delete("/v1/stories/{id}", h.deleteStory)
		pr.Post("/v1/stories/{id}/move", h.moveStory)
	})

	return r
}

type crudHandlers struct {
	list   http.HandlerFunc
	create http.HandlerFunc
	get    http.HandlerFunc
	update http.HandlerFunc
	delete http.HandlerFunc
}

// crud mounts the standard five routes of an entity under base, read
// operations behind readPerm and mutations behind writePerm.
func (h *Handler) crud(r chi.Router, base string, readPerm, writePerm domain.Permission, fns crudHandlers) {
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(readPerm))
		pr.Get(base, fns.list)
		pr.Get(base+"/{id}", fns.get)
	})
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth(writePerm))
		pr.Post(base, fns.create)
		pr.Put(base+"/{id}", fns.update)
		pr.Delete(base+"/{id}", fns.delete)
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

// requireAuth resolves the caller's identity for one required permission. The
// X-API-Key header (or a Bearer token) selects the key channel; otherwise the
// session cookie is consulted. All failures produce the same 401 body.
func (h *Handler) requireAuth(required domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if rawKey == "" {
				auth := strings.TrimSpace(r.Header.Get("Authorization"))
				if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
					rawKey = strings.TrimSpace(auth[7:])
				}
			}

			var sessionToken string
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				sessionToken = cookie.Value
			}

			result, err := h.svc.Auth.Authorize(r.Context(), rawKey, sessionToken, required)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), authCtxKey, result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFromContext(ctx context.Context) domain.AuthResult {
	result, _ := ctx.Value(authCtxKey).(domain.AuthResult)
	return result
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func openapiSpec() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "crmapi",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/v1/auth/login":    map[string]any{"post": map[string]any{"summary": "Log in and receive a session cookie"}},
			"/v1/leads/intake":  map[string]any{"post": map[string]any{"summary": "Submit a public lead"}},
			"/v1/leads":         map[string]any{"get": map[string]any{"summary": "List leads"}, "post": map[string]any{"summary": "Create lead"}},
			"/v1/tasks/{id}/move": map[string]any{
				"post": map[string]any{"summary": "Move a task card on the board"},
			},
			"/v1/stories/{id}/move": map[string]any{
				"post": map[string]any{"summary": "Move a story card on the board"},
			},
			"/v1/api-keys": map[string]any{
				"get":  map[string]any{"summary": "List API keys"},
				"post": map[string]any{"summary": "Create API key"},
			},
		},
	}
}
