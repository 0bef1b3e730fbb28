package domain

import "strings"

// StaffMember is a directory entry eligible for ticket assignment.
type StaffMember struct {
	ID         string
	Name       string
	Email      string
	Department string
}

// NormalizeDepartment is the matching key shared by ticket categories and
// staff departments.
func NormalizeDepartment(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameDepartment reports whether two department names route to the same pool.
func SameDepartment(a, b string) bool {
	key := NormalizeDepartment(a)
	return key != "" && key == NormalizeDepartment(b)
}
