package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memstore"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken("u1", domain.RoleStaff)
	if err != nil {
		t.Fatal(err)
	}
	if exp.IsZero() {
		t.Error("zero expiry")
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u1" || claims.Role != domain.RoleStaff {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatal(err)
	}
	if ComparePassword(hash, "hunter22") != nil {
		t.Error("correct password rejected")
	}
	if ComparePassword(hash, "hunter23") == nil {
		t.Error("wrong password accepted")
	}
}

func TestMiddlewareAndRoles(t *testing.T) {
	store := memstore.New()
	admin := domain.User{Name: "Admin", Email: "admin@x", Role: domain.RoleAdmin}
	client := domain.User{Name: "Client", Email: "client@x", Role: "client"}
	for _, u := range []*domain.User{&admin, &client} {
		if err := store.Users().Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, store.Users())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := http.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else if err != nil {
				code = http.StatusUnauthorized
			}
			return c.SendStatus(code)
		},
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.ID())
	})

	adminToken, _, _ := tm.GenerateToken(admin.ID, admin.Role)
	clientToken, _, _ := tm.GenerateToken(client.ID, client.Role)
	ghostToken, _, _ := tm.GenerateToken("ghost", domain.RoleAdmin)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"unknown account", "Bearer " + ghostToken, http.StatusUnauthorized},
		{"client forbidden", "Bearer " + clientToken, http.StatusForbidden},
		{"admin allowed", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
