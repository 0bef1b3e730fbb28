package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// trimChars is the whitespace strings.TrimSpace removes for ASCII and
// Latin-1 input. SQL TRIM only strips spaces, so department and category
// matching passes this set to BTRIM instead.
const trimChars = " \t\n\v\f\r\u0085\u00a0"

// StaffDirectory reads staff members eligible for assignment.
type StaffDirectory interface {
	// FindByDepartment matches trimmed, case-insensitive department names.
	// It returns an empty slice, not an error, when nobody matches.
	FindByDepartment(ctx context.Context, department string) ([]domain.StaffMember, error)
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	// CountByDepartment counts staff per normalized department name.
	CountByDepartment(ctx context.Context) (map[string]int, error)
}

type staffDirectory struct {
	pool *pgxpool.Pool
}

// NewStaffDirectory reads staff from the users table.
func NewStaffDirectory(pool *pgxpool.Pool) StaffDirectory {
	return &staffDirectory{pool: pool}
}

func (r *staffDirectory) FindByDepartment(ctx context.Context, department string) ([]domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, department
        FROM users
        WHERE LOWER(role)='staff' AND BTRIM(department, $2) <> ''
          AND LOWER(BTRIM(department, $2)) = $1
        ORDER BY created_at ASC`

	key := domain.NormalizeDepartment(department)
	if key == "" {
		return []domain.StaffMember{}, nil
	}
	rows, err := r.pool.Query(ctx, query, key, trimChars)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StaffMember{}
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(&staff.ID, &staff.Name, &staff.Email, &staff.Department); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffDirectory) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	const query = `
        SELECT id, name, email, department
        FROM users WHERE id=$1 AND LOWER(role)='staff'`

	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.Department,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffDirectory) CountByDepartment(ctx context.Context) (map[string]int, error) {
	const query = `
        SELECT LOWER(BTRIM(department, $1)) AS key, COUNT(*)
        FROM users
        WHERE LOWER(role)='staff' AND BTRIM(department, $1) <> ''
        GROUP BY key`
	return countRows(ctx, r.pool, query, trimChars)
}
