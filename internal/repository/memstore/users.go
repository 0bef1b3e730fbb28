package memstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type userStore struct{ s *Store }

func (u userStore) Create(_ context.Context, user *domain.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("email %s already registered: %w", user.Email, apperrors.ErrConflict)
		}
	}
	user.ID = u.s.newID()
	user.CreatedAt = u.s.now()
	u.s.users = append(u.s.users, *user)
	return nil
}

func (u userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.ID == id {
			found := user
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (u userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			found := user
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (u userStore) List(_ context.Context, role *domain.Role) ([]domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	var result []domain.User
	for i := len(u.s.users) - 1; i >= 0; i-- {
		user := u.s.users[i]
		if role != nil && !user.Role.Is(*role) {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

type staffStore struct{ s *Store }

func (st staffStore) FindByDepartment(_ context.Context, department string) ([]domain.StaffMember, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	result := []domain.StaffMember{}
	for _, user := range st.s.users {
		member, ok := user.StaffMember()
		if ok && domain.SameDepartment(member.Department, department) {
			result = append(result, member)
		}
	}
	return result, nil
}

func (st staffStore) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	for _, user := range st.s.users {
		if user.ID != id || !user.Role.Is(domain.RoleStaff) {
			continue
		}
		return &domain.StaffMember{ID: user.ID, Name: user.Name, Email: user.Email, Department: user.Department}, nil
	}
	return nil, apperrors.ErrNotFound
}

func (st staffStore) CountByDepartment(_ context.Context) (map[string]int, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	counts := map[string]int{}
	for _, user := range st.s.users {
		if member, ok := user.StaffMember(); ok {
			counts[domain.NormalizeDepartment(member.Department)]++
		}
	}
	return counts, nil
}
