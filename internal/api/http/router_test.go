package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type testServer struct {
	app     *fiber.App
	store   *memstore.Store
	tokens  *auth.TokenManager
	metrics *observability.Metrics
	logs    *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	store := memstore.New()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(config.Config{Auth: config.AuthConfig{JWTSecret: "test", BcryptCost: 4}},
		service.AuthDependencies{UserRepo: store.Users()})
	management := service.NewManagementService(store.Users(), authService)
	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     store.Tickets(),
		StaffDirectory: store.Staff(),
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		Assignments: assignments,
		Dispatcher:  dispatcher,
	})
	messages := service.NewMessageService(service.MessageDependencies{
		TicketRepo:  store.Tickets(),
		MessageRepo: store.Messages(),
		Dispatcher:  dispatcher,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: store.Notifications(),
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	notifications.RegisterHandlers()
	categories := service.NewCategoryService(service.CategoryDependencies{
		CategoryRepo:   store.Categories(),
		StaffDirectory: store.Staff(),
		TicketRepo:     store.Tickets(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", handlers.HealthDependencies{Metrics: metrics}),
		Users:          handlers.NewUsersHandler(authService, management),
		Staff:          handlers.NewStaffHandler(management),
		Categories:     handlers.NewCategoriesHandler(categories),
		Tickets:        handlers.NewTicketsHandler(tickets, assignments, messages),
		StaffTickets:   handlers.NewStaffTicketsHandler(tickets, notifications),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
	})

	return &testServer{app: app, store: store, tokens: authService.TokenManager(), metrics: metrics, logs: logs}
}

func (s *testServer) account(t *testing.T, name string, role domain.Role, department string) (*domain.User, string) {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com", Role: role, Department: department}
	if err := s.store.Users().Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	token, _, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatal(err)
	}
	return user, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func TestTicketAssignmentFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account(t, "admin", domain.RoleAdmin, "")
	_, clientToken := s.account(t, "client", domain.RoleClient, "")
	staff, staffToken := s.account(t, "staff", domain.RoleStaff, "Network")

	status, body := s.do(t, fiber.MethodPost, "/api/tickets", clientToken, map[string]string{"title": "VPN down", "description": "since 9am"})
	if status != fiber.StatusCreated {
		t.Fatalf("create status = %d body=%v", status, body)
	}
	created := body["data"].(map[string]any)
	ticketID := created["id"].(string)
	if created["status"] != string(domain.TicketStatusPending) || created["category"] != nil {
		t.Errorf("created = %v", created)
	}

	status, body = s.do(t, fiber.MethodPut, "/api/tickets/"+ticketID+"/category", adminToken, map[string]string{"category": "network"})
	if status != fiber.StatusOK {
		t.Fatalf("assign status = %d body=%v", status, body)
	}
	if body["assigned"] != true {
		t.Errorf("assigned = %v", body["assigned"])
	}
	staffBody, _ := body["staff"].(map[string]any)
	if staffBody["id"] != staff.ID {
		t.Errorf("staff = %v", body["staff"])
	}
	ticket := body["ticket"].(map[string]any)
	if ticket["status"] != string(domain.TicketStatusOpen) || ticket["assignedStaffId"] != staff.ID {
		t.Errorf("ticket = %v", ticket)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/notifications?unread=true", staffToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("notifications status = %d", status)
	}
	if items := body["data"].([]any); len(items) != 1 {
		t.Errorf("notifications = %v", items)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/staff/"+staff.ID+"/tickets", staffToken, nil)
	if status != fiber.StatusOK || len(body["data"].([]any)) != 1 {
		t.Errorf("staff tickets status = %d body=%v", status, body)
	}

	if got := s.metrics.Snapshot().Assignments["assigned"]; got != 1 {
		t.Errorf("assigned metric = %d", got)
	}
}

func TestAssignWithoutStaffReportsReason(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account(t, "admin", domain.RoleAdmin, "")
	client, _ := s.account(t, "client", domain.RoleClient, "")
	ticket := &domain.Ticket{Title: "T1", UserID: client.ID, Status: domain.TicketStatusPending}
	if err := s.store.Tickets().Create(context.Background(), ticket); err != nil {
		t.Fatal(err)
	}

	status, body := s.do(t, fiber.MethodPut, "/api/tickets/"+ticket.ID+"/category", adminToken, map[string]string{"category": "Hardware"})
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", status, body)
	}
	if body["assigned"] != false || body["staff"] != nil || body["message"] != service.ReasonNoStaff {
		t.Errorf("body = %v", body)
	}
	if got := body["ticket"].(map[string]any)["category"]; got != "Hardware" {
		t.Errorf("category = %v", got)
	}
}

func TestErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account(t, "admin", domain.RoleAdmin, "")
	_, staffToken := s.account(t, "staff", domain.RoleStaff, "Network")
	client, clientToken := s.account(t, "client", domain.RoleClient, "")
	ticket := &domain.Ticket{Title: "T1", UserID: client.ID, Status: domain.TicketStatusPending}
	if err := s.store.Tickets().Create(context.Background(), ticket); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"no token", fiber.MethodGet, "/api/tickets", "", nil, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", fiber.MethodGet, "/api/tickets", "garbage", nil, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"empty category", fiber.MethodPut, "/api/tickets/" + ticket.ID + "/category", adminToken, map[string]string{"category": " "}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
		{"staff assigns", fiber.MethodPut, "/api/tickets/" + ticket.ID + "/category", staffToken, map[string]string{"category": "Network"}, fiber.StatusForbidden, "FORBIDDEN"},
		{"client updates", fiber.MethodPut, "/api/tickets/" + ticket.ID, clientToken, map[string]string{"status": "Resolved"}, fiber.StatusForbidden, "FORBIDDEN"},
		{"unknown ticket", fiber.MethodPut, "/api/tickets/missing/category", adminToken, map[string]string{"category": "Network"}, fiber.StatusNotFound, "NOT_FOUND"},
		{"staff creates ticket", fiber.MethodPost, "/api/tickets", staffToken, map[string]string{"title": "x"}, fiber.StatusForbidden, "FORBIDDEN"},
		{"client management", fiber.MethodGet, "/api/management/users", clientToken, nil, fiber.StatusForbidden, "FORBIDDEN"},
		{"bad unassigned flag", fiber.MethodGet, "/api/tickets?unassigned=maybe", adminToken, nil, fiber.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, tc.method, tc.path, tc.token, tc.body)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body=%v)", status, tc.wantStatus, body)
			}
			if code := errorCode(body); code != tc.wantCode {
				t.Errorf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestRegisterLoginAndCategories(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.account(t, "admin", domain.RoleAdmin, "")

	status, body := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"name": "Dana", "email": "dana@example.com", "password": "secret1",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register status = %d body=%v", status, body)
	}
	user := body["data"].(map[string]any)["user"].(map[string]any)
	if _, leaked := user["password"]; leaked {
		t.Error("password leaked in user response")
	}

	status, body = s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "DANA@example.com", "password": "secret1"})
	if status != fiber.StatusOK {
		t.Fatalf("login status = %d body=%v", status, body)
	}
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	status, _ = s.do(t, fiber.MethodPost, "/api/management/categories", adminToken, map[string]string{"code": "NET", "name": "Network"})
	if status != fiber.StatusCreated {
		t.Fatalf("create category status = %d", status)
	}
	status, body = s.do(t, fiber.MethodPost, "/api/management/categories", adminToken, map[string]string{"code": "NET", "name": "Other"})
	if status != fiber.StatusConflict || errorCode(body) != "CONFLICT" {
		t.Errorf("duplicate category status = %d body=%v", status, body)
	}

	status, body = s.do(t, fiber.MethodGet, "/api/categories", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list categories status = %d", status)
	}
	items := body["data"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["code"] != "NET" {
		t.Errorf("categories = %v", items)
	}
}

func TestHealthAndPanicRecovery(t *testing.T) {
	s := newTestServer(t)
	s.app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })

	status, body := s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	if status != fiber.StatusOK || body["status"] != "ready" {
		t.Errorf("ready status = %d body=%v", status, body)
	}

	status, body = s.do(t, fiber.MethodGet, "/boom", "", nil)
	if status != fiber.StatusInternalServerError || errorCode(body) != "INTERNAL_ERROR" {
		t.Errorf("panic status = %d body=%v", status, body)
	}
	if s.logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic was not logged")
	}
}
