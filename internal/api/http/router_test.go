package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository/repotest"
	"github.com/spec-kit/helpdesk/internal/service"
)

const password = "password123"

type testServer struct {
	app   *fiber.App
	store *repotest.Store
	users map[string]domain.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repotest.NewStore()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	users := map[string]domain.User{}
	for _, u := range []domain.User{
		{Username: "admin", FullName: "Ada Admin", Role: domain.RoleAdmin},
		{Username: "tech1", FullName: "Tom Tech", Role: domain.RoleTechnician},
		{Username: "alice", FullName: "Alice Employee", Role: domain.RoleEmployee},
		{Username: "bob", FullName: "Bob Employee", Role: domain.RoleEmployee},
	} {
		u.PasswordHash = hash
		u.IsActive = true
		users[u.Username] = store.AddUser(u)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	denylist := auth.NewRedisDenylist(client)

	cfg := config.Config{
		App:  config.AppConfig{Name: "HelpDesk Pro", Version: "1.0.0"},
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 60, BcryptCost: 4},
	}
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(cfg, store.Users(), denylist, logger)

	app := apihttp.NewApp(cfg.App.Name, logger, 0, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil),
		Users:          handlers.NewUsersHandler(authService, service.NewUserService(store.Users())),
		Tickets:        handlers.NewTicketsHandler(service.NewTicketService(store, dispatcher, logger)),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(store.Tickets())),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users(), denylist, logger),
		Metrics:        observability.NewMetrics(),
	})
	return &testServer{app: app, store: store, users: users}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.AccessToken
}

func (s *testServer) createTicket(t *testing.T, token string, body map[string]string) int64 {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/tickets", token, body)
	require.Equal(t, http.StatusCreated, status)
	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out.ID
}

func ticketPath(id int64, suffix string) string {
	return "/api/tickets/" + strconv.FormatInt(id, 10) + suffix
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should serve the fixed identity without auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "ok", "service": "HelpDesk Pro", "version": "1.0.0"}, body)
	})
	t.Run("Should report unmatched routes as not found", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/nowhere", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
	t.Run("Should expose request and error counters", func(t *testing.T) {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "helpdesk_http_requests_total")
		assert.Contains(t, string(raw), `code="NOT_FOUND"`)
	})
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should reject wrong credentials", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})
	t.Run("Should return the current user and revoke on logout", func(t *testing.T) {
		token := s.login(t, "alice")
		status, env := s.do(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"username":"alice"`)

		status, _ = s.do(t, http.MethodPost, "/auth/logout", token, nil)
		assert.Equal(t, http.StatusNoContent, status)

		status, _ = s.do(t, http.MethodGet, "/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
	t.Run("Should require a token on protected routes", func(t *testing.T) {
		status, _ := s.do(t, http.MethodGet, "/api/tickets", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestTicketEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")
	tech := s.login(t, "tech1")

	t.Run("Should create with defaults and labels", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/api/tickets", alice, map[string]string{
			"title": "Printer broken", "description": "No output", "priority": "urgent",
		})
		require.Equal(t, http.StatusCreated, status)
		var ticket struct {
			Priority      string  `json:"priority"`
			Status        string  `json:"status"`
			StatusLabel   string  `json:"status_label"`
			CategoryLabel string  `json:"category_label"`
			ClosedAt      *string `json:"closed_at"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &ticket))
		assert.Equal(t, "medium", ticket.Priority)
		assert.Equal(t, "open", ticket.Status)
		assert.Equal(t, "Open", ticket.StatusLabel)
		assert.Equal(t, "Software", ticket.CategoryLabel)
		assert.Nil(t, ticket.ClosedAt)
	})
	t.Run("Should reject a missing description", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/api/tickets", alice, map[string]string{"title": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})
	t.Run("Should reject an over-long title as a validation error", func(t *testing.T) {
		status, env := s.do(t, http.MethodPost, "/api/tickets", alice, map[string]string{
			"title": strings.Repeat("t", domain.MaxTitleLength+1), "description": "d",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})
	t.Run("Should distinguish forbidden from not found", func(t *testing.T) {
		id := s.createTicket(t, alice, map[string]string{"title": "VPN", "description": "down"})
		status, _ := s.do(t, http.MethodGet, ticketPath(id, ""), bob, nil)
		assert.Equal(t, http.StatusForbidden, status)
		status, _ = s.do(t, http.MethodGet, ticketPath(id, ""), tech, nil)
		assert.Equal(t, http.StatusOK, status)
		status, _ = s.do(t, http.MethodGet, ticketPath(9999, ""), bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = s.do(t, http.MethodGet, "/api/tickets/abc", tech, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
	t.Run("Should accept but ignore an employee's status change", func(t *testing.T) {
		id := s.createTicket(t, alice, map[string]string{"title": "Mouse", "description": "dead"})
		status, env := s.do(t, http.MethodPost, ticketPath(id, "/update"), alice, map[string]string{"status": "closed"})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"status":"open"`)
		assert.Contains(t, string(env.Data), `"changes":[]`)
	})
	t.Run("Should close and reopen as a technician", func(t *testing.T) {
		id := s.createTicket(t, alice, map[string]string{"title": "Screen", "description": "black"})
		status, env := s.do(t, http.MethodPost, ticketPath(id, "/update"), tech, map[string]string{"status": "closed"})
		require.Equal(t, http.StatusOK, status)
		assert.NotContains(t, string(env.Data), `"closed_at":null`)

		status, env = s.do(t, http.MethodPost, ticketPath(id, "/update"), tech, map[string]string{"status": "open"})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"closed_at":null`)
	})
	t.Run("Should assign by numeric or string user id", func(t *testing.T) {
		techID := s.users["tech1"].ID
		id := s.createTicket(t, alice, map[string]string{"title": "Dock", "description": "no video"})
		status, env := s.do(t, http.MethodPost, ticketPath(id, "/update"), tech, map[string]any{"assigned_to_id": techID})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"assigned_to_id":`+strconv.FormatInt(techID, 10))

		status, env = s.do(t, http.MethodPost, ticketPath(id, "/update"), tech, map[string]any{"assigned_to_id": ""})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"assigned_to_id":null`)

		status, env = s.do(t, http.MethodPost, ticketPath(id, "/update"), tech, map[string]any{"assigned_to_id": strconv.FormatInt(techID, 10)})
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"assigned_to_id":`+strconv.FormatInt(techID, 10))
	})
	t.Run("Should store employee comments as public", func(t *testing.T) {
		id := s.createTicket(t, alice, map[string]string{"title": "Badge", "description": "lost"})
		status, env := s.do(t, http.MethodPost, ticketPath(id, "/comments"), alice, map[string]any{"content": "hello", "is_internal": true})
		require.Equal(t, http.StatusCreated, status)
		assert.Contains(t, string(env.Data), `"is_internal":false`)

		status, _ = s.do(t, http.MethodPost, ticketPath(id, "/comments"), alice, map[string]any{"content": "  "})
		assert.Equal(t, http.StatusBadRequest, status)
	})
	t.Run("Should scope the list to the employee's own tickets", func(t *testing.T) {
		s.createTicket(t, bob, map[string]string{"title": "Bob's laptop", "description": "slow"})
		status, env := s.do(t, http.MethodGet, "/api/tickets?status=all&q=laptop", bob, nil)
		require.Equal(t, http.StatusOK, status)
		var items []struct {
			Title string `json:"title"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "Bob's laptop", items[0].Title)
	})
}

func TestDashboardAndUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice")
	tech := s.login(t, "tech1")
	admin := s.login(t, "admin")
	s.createTicket(t, alice, map[string]string{"title": "One", "description": "1", "category": "network"})

	t.Run("Should return all vocabulary keys in the overview", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/stats/overview", alice, nil)
		require.Equal(t, http.StatusOK, status)
		var overview struct {
			ByStatus   map[string]int `json:"by_status"`
			ByPriority map[string]int `json:"by_priority"`
			ByCategory map[string]int `json:"by_category"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &overview))
		assert.Len(t, overview.ByStatus, 4)
		assert.Len(t, overview.ByPriority, 4)
		assert.Len(t, overview.ByCategory, 5)
		assert.Equal(t, 1, overview.ByCategory["network"])
	})
	t.Run("Should serve the dashboard", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/dashboard", tech, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"total":1`)
		assert.Contains(t, string(env.Data), `"my_assigned":[]`)
	})
	t.Run("Should gate the user directory by role", func(t *testing.T) {
		status, _ := s.do(t, http.MethodGet, "/api/users", tech, nil)
		assert.Equal(t, http.StatusForbidden, status)
		status, env := s.do(t, http.MethodGet, "/api/users", admin, nil)
		require.Equal(t, http.StatusOK, status)
		var users []map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &users))
		assert.Len(t, users, 4)

		status, _ = s.do(t, http.MethodGet, "/api/users/technicians", alice, nil)
		assert.Equal(t, http.StatusForbidden, status)
		status, _ = s.do(t, http.MethodGet, "/api/users/technicians", tech, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}
