package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints and account lookups.
type UsersHandler struct {
	auth     *service.AuthService
	accounts *service.ManagementService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, accounts *service.ManagementService) *UsersHandler {
	return &UsersHandler{auth: authService, accounts: accounts}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.RegisterClient(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Number:   req.Number,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(sessionResponse(session))
}

// Login handles POST /auth/login for every role.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(session))
}

// GetByID handles GET /api/users/id/:id.
func (h *UsersHandler) GetByID(c *fiber.Ctx) error {
	user, err := h.accounts.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// GetByEmail handles GET /api/users/by-email?email=.
func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.accounts.GetUserByEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

func sessionResponse(session *service.Session) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(session.User),
			"auth": dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	}
}

// currentUser returns the authenticated account.
func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return &principal.User, nil
}
