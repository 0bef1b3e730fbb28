package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffHandler exposes the admin account management endpoints.
type StaffHandler struct {
	accounts *service.ManagementService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(accounts *service.ManagementService) *StaffHandler {
	return &StaffHandler{accounts: accounts}
}

// ListUsers handles GET /api/management/users.
func (h *StaffHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.accounts.ListUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// ListStaff handles GET /api/management/staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	staff, err := h.accounts.ListStaff(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(staff)})
}

// CreateStaff handles POST /api/management/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	staff, err := h.accounts.CreateStaff(c.UserContext(), actor, service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Number:     req.Number,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(staff)})
}
