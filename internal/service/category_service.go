package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CategoryService manages the routing category catalog.
type CategoryService struct {
	categories repository.CategoryRepository
	staff      repository.StaffDirectory
	tickets    repository.TicketRepository
}

// CategoryDependencies bundles repositories.
type CategoryDependencies struct {
	CategoryRepo   repository.CategoryRepository
	StaffDirectory repository.StaffDirectory
	TicketRepo     repository.TicketRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(deps CategoryDependencies) *CategoryService {
	return &CategoryService{
		categories: deps.CategoryRepo,
		staff:      deps.StaffDirectory,
		tickets:    deps.TicketRepo,
	}
}

// ListCategories returns the catalog.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// Summaries attaches staff and ticket counts to each category, matching
// department and category names the same way assignment does.
func (s *CategoryService) Summaries(ctx context.Context, actor *domain.User) ([]domain.CategorySummary, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	staffCounts, err := s.staff.CountByDepartment(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticketCounts, err := s.tickets.CountByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summaries := make([]domain.CategorySummary, 0, len(categories))
	for _, category := range categories {
		key := domain.NormalizeDepartment(category.Name)
		summaries = append(summaries, domain.CategorySummary{
			Category:    category,
			StaffCount:  staffCounts[key],
			TicketCount: ticketCounts[key],
		})
	}
	return summaries, nil
}

// CreateCategory adds a category. Code and name must both be unused.
func (s *CategoryService) CreateCategory(ctx context.Context, actor *domain.User, code, name string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("category code and name are required", nil)
	}

	category := &domain.Category{Code: code, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("category already exists", map[string]any{"code": code, "name": name})
		}
		return nil, apperrors.MapError(err)
	}
	return category, nil
}
