package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SeedAccount is one bootstrap account.
type SeedAccount struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
}

// DefaultSeedAccounts gives a fresh install an admin, a client and staff in
// two departments.
var DefaultSeedAccounts = []SeedAccount{
	{Name: "Admin", Email: "admin@gmail.com", Password: "Admin123", Role: domain.RoleAdmin},
	{Name: "Network Lead", Email: "staff@gmail.com", Password: "Staff123", Role: domain.RoleStaff, Department: "Network"},
	{Name: "Network Support", Email: "network.staff2@gmail.com", Password: "Staff123", Role: domain.RoleStaff, Department: "Network"},
	{Name: "Software Support", Email: "software.staff@gmail.com", Password: "Staff123", Role: domain.RoleStaff, Department: "Software"},
	{Name: "Client", Email: "client@gmail.com", Password: "Client123", Role: domain.RoleClient},
}

// Bootstrapper inserts seed accounts into the regular user store.
type Bootstrapper struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewBootstrapper builds a Bootstrapper.
func NewBootstrapper(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{users: users, bcryptCost: bcryptCost, logger: logger}
}

// SeedAccounts creates every account whose email is not yet taken and
// returns how many were inserted. A non-empty password replaces the
// per-account passwords.
func (b *Bootstrapper) SeedAccounts(ctx context.Context, accounts []SeedAccount, password string) (int, error) {
	created := 0
	for _, account := range accounts {
		email := strings.ToLower(strings.TrimSpace(account.Email))
		if _, err := b.users.GetByEmail(ctx, email); err == nil {
			continue
		} else if !apperrors.IsNotFound(err) {
			return created, err
		}

		plain := account.Password
		if password != "" {
			plain = password
		}
		hash, err := auth.HashPassword(plain, b.bcryptCost)
		if err != nil {
			return created, err
		}
		user := &domain.User{
			Name:         account.Name,
			Email:        email,
			PasswordHash: hash,
			Role:         account.Role,
			Department:   account.Department,
		}
		if err := b.users.Create(ctx, user); err != nil {
			return created, err
		}
		created++
		b.logger.Info("seeded account", zap.String("email", email), zap.String("role", string(account.Role)))
	}
	return created, nil
}
