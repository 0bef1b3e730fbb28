package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ErrVersionConflict is returned by Save when the stored ticket moved on
// since it was loaded.
var ErrVersionConflict = fmt.Errorf("ticket version mismatch: %w", apperrors.ErrConflict)

// TicketFilter captures listing predicates. Nil fields are ignored.
type TicketFilter struct {
	UserID           *string
	AssignedStaffID  *string
	AssignedStaffIDs []string
	HasCategory      *bool
	Statuses         []domain.TicketStatus
	// Limit <= 0 returns every match.
	Limit  int
	Offset int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Find(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Save writes the whole document if ticket.Version matches the stored
	// version, then bumps ticket.Version.
	Save(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) (bool, error)
	// ReopenAssignedPending moves assigned tickets still in Pending to Open.
	ReopenAssignedPending(ctx context.Context) (int64, error)
	// CountByCategory counts tickets per normalized category name.
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, user_id, status, priority, category,
               assigned_staff_id, assigned_staff_name, assigned_department, assigned_at,
               created_at, updated_at, version`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, user_id, status, priority, category,
            assigned_staff_id, assigned_staff_name, assigned_department, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at, version`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.UserID,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedStaffID,
		ticket.AssignedStaffName,
		ticket.AssignedDepartment,
		ticket.AssignedAt,
	).Scan(&ticket.ID, &ticket.Date, &ticket.UpdatedAt, &ticket.Version)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Find(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, fmt.Sprintf("assigned_staff_id=$%d", len(args)))
	}
	if filter.AssignedStaffIDs != nil {
		args = append(args, filter.AssignedStaffIDs)
		clauses = append(clauses, fmt.Sprintf("assigned_staff_id = ANY($%d)", len(args)))
	}
	if filter.HasCategory != nil {
		if *filter.HasCategory {
			clauses = append(clauses, "category <> ''")
		} else {
			clauses = append(clauses, "category = ''")
		}
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, category=$3, assigned_staff_id=$4,
            assigned_staff_name=$5, assigned_department=$6, assigned_at=$7,
            updated_at=NOW(), version=version+1
        WHERE id=$8 AND version=$9
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedStaffID,
		ticket.AssignedStaffName,
		ticket.AssignedDepartment,
		ticket.AssignedAt,
		ticket.ID,
		ticket.Version,
	).Scan(&ticket.Version, &ticket.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrVersionConflict
	}
	return pgx.ErrNoRows
}

func (r *ticketRepository) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) ReopenAssignedPending(ctx context.Context) (int64, error) {
	const query = `
        UPDATE tickets SET status=$1, updated_at=NOW(), version=version+1
        WHERE assigned_staff_id <> '' AND status=$2`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusOpen, domain.TicketStatusPending)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	const query = `
        SELECT LOWER(BTRIM(category, $1)) AS key, COUNT(*)
        FROM tickets WHERE BTRIM(category, $1) <> ''
        GROUP BY key`
	return countRows(ctx, r.pool, query, trimChars)
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.UserID,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.AssignedStaffID,
		&ticket.AssignedStaffName,
		&ticket.AssignedDepartment,
		&ticket.AssignedAt,
		&ticket.Date,
		&ticket.UpdatedAt,
		&ticket.Version,
	)
	return ticket, err
}

func countRows(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (map[string]int, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}
