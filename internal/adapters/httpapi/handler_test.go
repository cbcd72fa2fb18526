package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forgeworks/crmapi/internal/adapters/sqlite"
	"github.com/forgeworks/crmapi/internal/adapters/sqlite/gormsqlite"
	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/usecase"
	"github.com/forgeworks/crmapi/migrations"
)

type testEnv struct {
	router http.Handler
	auth   *usecase.AuthService
	board  *usecase.BoardService
}

// newTestEnv wires the full HTTP stack over a throwaway sqlite file, the same
// way the application assembles it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gormsqlite.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("writer sql db: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := migrations.Up(ctx, sqlDB); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	clientRepo := sqlite.NewClientRepository(db)
	authService, err := usecase.NewAuthService(sqlite.NewUserRepository(db), sqlite.NewAPIKeyRepository(db), "test-secret")
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	leadService, err := usecase.NewLeadService(sqlite.NewLeadRepository(db), clientRepo)
	if err != nil {
		t.Fatalf("lead service: %v", err)
	}
	boardService := usecase.NewBoardService(sqlite.NewTaskRepository(db), sqlite.NewStoryRepository(db))

	handler := NewHandler(Services{
		Auth:             authService,
		Leads:            leadService,
		Clients:          usecase.NewClientService(clientRepo),
		Contracts:        usecase.NewContractService(sqlite.NewContractRepository(db), clientRepo),
		Projects:         usecase.NewProjectService(sqlite.NewProjectRepository(db), clientRepo),
		InternalProjects: usecase.NewInternalProjectService(sqlite.NewInternalProjectRepository(db)),
		Board:            boardService,
		Members:          usecase.NewMemberService(sqlite.NewMemberRepository(db)),
		Meetings:         usecase.NewMeetingService(sqlite.NewMeetingRepository(db)),
		Suggestions:      usecase.NewSuggestionService(sqlite.NewSuggestionRepository(db)),
		Transactions:     usecase.NewTransactionService(sqlite.NewTransactionRepository(db)),
	})

	return &testEnv{router: handler.Router(), auth: authService, board: boardService}
}

func (e *testEnv) request(t *testing.T, method, path, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if mod != nil {
		mod(req)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func withKey(raw string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("X-API-Key", raw) }
}

func withSession(cookie *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func (e *testEnv) createKey(t *testing.T, perms []domain.Permission, projectID *string) string {
	t.Helper()
	_, raw, err := e.auth.CreateAPIKey(context.Background(), "test-key", perms, projectID, nil)
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}
	return raw
}

func (e *testEnv) loginCookie(t *testing.T) *http.Cookie {
	t.Helper()
	if _, err := e.auth.Register(context.Background(), "admin@example.com", "long-enough-pw", "Admin", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	rec := e.request(t, http.MethodPost, "/v1/auth/login", `{"email":"admin@example.com","password":"long-enough-pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/leads"},
		{http.MethodGet, "/v1/clients"},
		{http.MethodGet, "/v1/api-keys"},
		{http.MethodGet, "/v1/internal-projects/ip-1/tasks"},
		{http.MethodGet, "/v1/auth/me"},
	}
	for _, tt := range paths {
		rec := env.request(t, tt.method, tt.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.path, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] != "unauthorized" {
			t.Errorf("%s %s body = %q, want uniform unauthorized", tt.method, tt.path, rec.Body.String())
		}
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("session cookie SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.Value == "" {
		t.Error("session cookie carries no token")
	}

	rec := env.request(t, http.MethodPost, "/v1/auth/login", `{"email":"admin@example.com","password":"wrong-password"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
}

func TestSessionAuthorizesRequests(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	rec := env.request(t, http.MethodGet, "/v1/auth/me", "", withSession(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
	var me map[string]any
	decodeBody(t, rec, &me)
	if me["kind"] != string(domain.AuthKindJWT) {
		t.Errorf("kind = %v, want session", me["kind"])
	}
	if me["email"] != "admin@example.com" {
		t.Errorf("email = %v", me["email"])
	}

	rec = env.request(t, http.MethodGet, "/v1/leads", "", withSession(cookie))
	if rec.Code != http.StatusOK {
		t.Errorf("session lead list status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Sessions cover the admin surface too.
	rec = env.request(t, http.MethodGet, "/v1/api-keys", "", withSession(cookie))
	if rec.Code != http.StatusOK {
		t.Errorf("api key list status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/v1/auth/logout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	var cleared *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			cleared = cookie
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Errorf("logout should expire the session cookie, got %+v", cleared)
	}
}

func TestAPIKeyLeadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	raw := env.createKey(t, []domain.Permission{domain.PermLeadsRead, domain.PermLeadsWrite}, nil)

	rec := env.request(t, http.MethodPost, "/v1/leads", `{"name":"Jane","email":"j@x.com"}`, withKey(raw))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create lead status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created leadResponse
	decodeBody(t, rec, &created)
	if created.ID == "" || created.Name != "Jane" {
		t.Fatalf("unexpected lead: %+v", created)
	}

	rec = env.request(t, http.MethodGet, "/v1/leads", "", withKey(raw))
	if rec.Code != http.StatusOK {
		t.Fatalf("list leads status = %d", rec.Code)
	}
	var listed struct {
		Items []leadResponse `json:"items"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Items) != 1 || listed.Items[0].ID != created.ID {
		t.Errorf("listed leads = %+v", listed.Items)
	}
}

func TestAPIKeyMissingPermissionRejected(t *testing.T) {
	env := newTestEnv(t)
	raw := env.createKey(t, []domain.Permission{domain.PermLeadsRead}, nil)

	rec := env.request(t, http.MethodPost, "/v1/leads", `{"name":"Jane","email":"j@x.com"}`, withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("write without leads:write status = %d, want 401", rec.Code)
	}

	rec = env.request(t, http.MethodGet, "/v1/api-keys", "", withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("admin surface with scoped key status = %d, want 401", rec.Code)
	}
}

func TestLeadIntakeIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/v1/leads/intake", `{"name":"Jane Roe","email":"jane@example.com","message":"Need a site"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("intake status = %d, body %s", rec.Code, rec.Body.String())
	}
	var lead leadResponse
	decodeBody(t, rec, &lead)
	if lead.Source != "intake" || lead.Status != string(domain.LeadNew) {
		t.Errorf("unexpected intake lead: %+v", lead)
	}

	rec = env.request(t, http.MethodPost, "/v1/leads/intake", `{"name":"Jane","email":"jane@example.com","admin":true}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}

func TestTaskMoveEndpoint(t *testing.T) {
	env := newTestEnv(t)
	raw := env.createKey(t, []domain.Permission{domain.PermTasksRead, domain.PermTasksWrite}, nil)

	mk := func(title string) taskResponse {
		rec := env.request(t, http.MethodPost, "/v1/internal-projects/ip-1/tasks", `{"title":"`+title+`"}`, withKey(raw))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create task %q status = %d, body %s", title, rec.Code, rec.Body.String())
		}
		var task taskResponse
		decodeBody(t, rec, &task)
		return task
	}

	mk("A")
	mk("B")
	c := mk("C")

	// C jumps to the head of todo.
	rec := env.request(t, http.MethodPost, "/v1/tasks/"+c.ID+"/move", `{"status":"todo","order":0}`, withKey(raw))
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d, body %s", rec.Code, rec.Body.String())
	}
	var moved struct {
		Items []taskResponse `json:"items"`
	}
	decodeBody(t, rec, &moved)

	orders := make(map[string]int)
	for _, task := range moved.Items {
		orders[task.Title] = task.Order
	}
	want := map[string]int{"C": 0, "A": 1, "B": 2}
	for title, ord := range want {
		if orders[title] != ord {
			t.Errorf("%s order = %d, want %d (board %v)", title, orders[title], ord, orders)
		}
	}

	rec = env.request(t, http.MethodPost, "/v1/tasks/"+c.ID+"/move", `{"status":"bogus","order":0}`, withKey(raw))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status move = %d, want 400", rec.Code)
	}
}

func TestScopedKeyProjectBoundary(t *testing.T) {
	env := newTestEnv(t)

	scope := "ip-1"
	raw := env.createKey(t, []domain.Permission{domain.PermTasksRead, domain.PermTasksWrite}, &scope)

	rec := env.request(t, http.MethodGet, "/v1/internal-projects/ip-1/tasks", "", withKey(raw))
	if rec.Code != http.StatusOK {
		t.Errorf("own project status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/v1/internal-projects/ip-2/tasks", "", withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign project status = %d, want 401", rec.Code)
	}

	// The scope also guards item routes through the card's parent project.
	foreign, err := env.board.CreateTask(context.Background(), domain.Task{InternalProjectID: "ip-2", Title: "X", Status: domain.StatusTodo})
	if err != nil {
		t.Fatalf("seed foreign task: %v", err)
	}
	rec = env.request(t, http.MethodPost, "/v1/tasks/"+foreign.ID+"/move", `{"status":"todo","order":0}`, withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign task move status = %d, want 401", rec.Code)
	}
}

func TestScopedKeyStoryBoundary(t *testing.T) {
	env := newTestEnv(t)

	scope := "p-1"
	raw := env.createKey(t, []domain.Permission{domain.PermStoriesRead, domain.PermStoriesWrite}, &scope)

	rec := env.request(t, http.MethodGet, "/v1/projects/p-1/stories", "", withKey(raw))
	if rec.Code != http.StatusOK {
		t.Errorf("own project status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/v1/projects/p-2/stories", "", withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign project list status = %d, want 401", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/v1/projects/p-2/stories", `{"title":"X"}`, withKey(raw))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign project create status = %d, want 401", rec.Code)
	}

	// Item routes resolve the scope through the card's parent project.
	foreign, err := env.board.CreateStory(context.Background(), domain.Story{ProjectID: "p-2", Title: "X", Status: domain.StatusTodo})
	if err != nil {
		t.Fatalf("seed foreign story: %v", err)
	}
	for _, tt := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/v1/stories/" + foreign.ID, ""},
		{http.MethodPut, "/v1/stories/" + foreign.ID, `{"title":"Y"}`},
		{http.MethodDelete, "/v1/stories/" + foreign.ID, ""},
		{http.MethodPost, "/v1/stories/" + foreign.ID + "/move", `{"status":"todo","order":0}`},
	} {
		rec := env.request(t, tt.method, tt.path, tt.body, withKey(raw))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestCreateAPIKeyOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginCookie(t)

	rec := env.request(t, http.MethodPost, "/v1/api-keys", `{"name":"ci","permissions":["leads:read"]}`, withSession(cookie))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create key status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Key    apiKeyResponse `json:"key"`
		RawKey string         `json:"raw_key"`
	}
	decodeBody(t, rec, &created)
	if !strings.HasPrefix(created.RawKey, "ck_") {
		t.Errorf("raw key = %q, want ck_ prefix", created.RawKey)
	}
	if created.Key.Prefix != created.RawKey[:11] {
		t.Errorf("stored prefix %q does not match raw key", created.Key.Prefix)
	}

	// The fresh key works immediately.
	rec = env.request(t, http.MethodGet, "/v1/leads", "", withKey(created.RawKey))
	if rec.Code != http.StatusOK {
		t.Errorf("fresh key status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Listing never exposes raw material.
	rec = env.request(t, http.MethodGet, "/v1/api-keys", "", withSession(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("list keys status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), created.RawKey) {
		t.Error("key listing must not contain the raw key")
	}
}

func TestNotFoundMapping(t *testing.T) {
	env := newTestEnv(t)
	raw := env.createKey(t, []domain.Permission{domain.PermLeadsRead}, nil)

	rec := env.request(t, http.MethodGet, "/v1/leads/missing", "", withKey(raw))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing lead status = %d, want 404", rec.Code)
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	env := newTestEnv(t)
	raw := env.createKey(t, []domain.Permission{domain.PermLeadsWrite}, nil)

	rec := env.request(t, http.MethodPost, "/v1/leads", `{"name":`, withKey(raw))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("truncated json status = %d, want 400", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/v1/leads", `{"name":"Jane","email":"j@x.com","surprise":1}`, withKey(raw))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", rec.Code)
	}
}
