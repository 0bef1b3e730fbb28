package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ManagementService covers admin account administration.
type ManagementService struct {
	users    repository.UserRepository
	accounts *AuthService
}

// NewManagementService constructs the service. Account creation shares the
// AuthService validation and hashing.
func NewManagementService(users repository.UserRepository, accounts *AuthService) *ManagementService {
	return &ManagementService{users: users, accounts: accounts}
}

// ListUsers returns every account.
func (s *ManagementService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListStaff returns staff accounts.
func (s *ManagementService) ListStaff(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	role := domain.RoleStaff
	users, err := s.users.List(ctx, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// CreateStaff adds a staff member to a department. The new member joins
// that department's assignment pool immediately.
func (s *ManagementService) CreateStaff(ctx context.Context, actor *domain.User, input RegisterInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.accounts.createAccount(ctx, input, domain.RoleStaff)
}

// GetUser loads an account by id.
func (s *ManagementService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": id})
	}
	return user, nil
}

// GetUserByEmail loads an account by email, ignoring case.
func (s *ManagementService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"email": email})
	}
	return user, nil
}
