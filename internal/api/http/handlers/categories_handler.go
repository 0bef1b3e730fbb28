package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CategoriesHandler serves category listings and management.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponses(categories)})
}

// Summaries handles GET /api/management/categories.
func (h *CategoriesHandler) Summaries(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	summaries, err := h.categories.Summaries(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.CategorySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, dto.NewCategorySummaryResponse(summary))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /api/management/categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.categories.CreateCategory(c.UserContext(), actor, req.Code, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewCategorySummaryResponse(domain.CategorySummary{Category: *category}),
	})
}
