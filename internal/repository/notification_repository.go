package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanplant/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	Update(ctx context.Context, notif *domain.Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	SetReadAt(ctx context.Context, id uuid.UUID, readAt *time.Time) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationSelect = `
	SELECT
		n.id, n.user_id, n.type, n.title, n.message, n.link_url, n.plant_id,
		n.created_at, n.sent_at, n.read_at,
		p.scientific_name AS plant_scientific_name, p.common_name AS plant_common_name
	FROM notifications n
	LEFT JOIN plants p ON p.id = n.plant_id`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, link_url, plant_id, sent_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message,
		notif.LinkURL, notif.PlantID, notif.SentAt, notif.ReadAt,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := notificationSelect + ` WHERE n.id = $1`

	err := r.db.GetContext(ctx, &notif, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

// Update rewrites the content fields. Recipient and lifecycle timestamps are
// not touched.
func (r *notificationRepository) Update(ctx context.Context, notif *domain.Notification) error {
	query := `
		UPDATE notifications
		SET title = $2, message = $3, type = $4, link_url = $5, plant_id = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		notif.ID, notif.Title, notif.Message, notif.Type, notif.LinkURL, notif.PlantID,
	)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrNotificationNotFound)
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrNotificationNotFound)
}

func (r *notificationRepository) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	conditions := []string{"n.user_id = $1"}
	args := []any{filter.UserID}

	if filter.Unread != nil {
		if *filter.Unread {
			conditions = append(conditions, "n.read_at IS NULL")
		} else {
			conditions = append(conditions, "n.read_at IS NOT NULL")
		}
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("LOWER(n.type) = LOWER($%d)", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conditions = append(conditions, fmt.Sprintf("n.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conditions = append(conditions, fmt.Sprintf("n.created_at <= $%d", len(args)))
	}

	query := notificationSelect +
		` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY n.created_at DESC`

	notifications := []domain.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	return notifications, err
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrNotificationNotFound)
}

// SetReadAt stores readAt; nil marks the notification unread again.
func (r *notificationRepository) SetReadAt(ctx context.Context, id uuid.UUID, readAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET read_at = $2 WHERE id = $1`, id, readAt)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrNotificationNotFound)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error) {
	query := `UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, userID, readAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}
