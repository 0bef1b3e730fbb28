package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationRepository persists staff notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	// ListByStaff returns newest first.
	ListByStaff(ctx context.Context, staffID string, unreadOnly bool) ([]domain.Notification, error)
	// MarkRead flags a notification owned by staffID. A missing or foreign
	// notification yields a not-found error.
	MarkRead(ctx context.Context, id, staffID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (staff_id, type, title, message, ticket_id, message_id, read)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.StaffID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.TicketID,
		notification.MessageID,
		notification.Read,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByStaff(ctx context.Context, staffID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `
        SELECT id, staff_id, type, title, message, ticket_id, message_id, read, created_at
        FROM notifications WHERE staff_id=$1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.StaffID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.TicketID,
			&n.MessageID,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, staffID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id=$1 AND staff_id=$2`, id, staffID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
