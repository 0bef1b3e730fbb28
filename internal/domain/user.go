package domain

import (
	"strings"
	"time"
)

// Role differentiates admins, staff and clients.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleStaff  Role = "Staff"
	RoleClient Role = "Client"
)

// ParseRole resolves a role name case-insensitively.
func ParseRole(raw string) (Role, bool) {
	for _, role := range []Role{RoleAdmin, RoleStaff, RoleClient} {
		if strings.EqualFold(strings.TrimSpace(raw), string(role)) {
			return role, true
		}
	}
	return "", false
}

// Is compares roles case-insensitively; stored roles are free text.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(strings.TrimSpace(string(r)), string(other))
}

// User is any account: admin, staff member or client.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Number       string
	CreatedAt    time.Time
}

// StaffMember projects the user onto the staff directory shape. The second
// return is false for non-staff accounts and staff without a department.
func (u User) StaffMember() (StaffMember, bool) {
	if !u.Role.Is(RoleStaff) || strings.TrimSpace(u.Department) == "" {
		return StaffMember{}, false
	}
	return StaffMember{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
	}, true
}
