package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanplant/internal/domain"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.Reminder) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Reminder, error)
	Update(ctx context.Context, reminder *domain.Reminder) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, filter domain.ReminderFilter) ([]domain.Reminder, error)
	Count(ctx context.Context, filter domain.ReminderFilter) (int64, error)
}

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

const reminderSelect = `
	SELECT
		r.id, r.title, r.description, r.scheduled_at, r.completed, r.priority, r.category,
		r.user_id, r.plant_id, r.created_at, r.updated_at,
		p.scientific_name AS plant_scientific_name, p.common_name AS plant_common_name
	FROM reminders r
	LEFT JOIN plants p ON p.id = r.plant_id`

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (id, title, description, scheduled_at, completed, priority, category, user_id, plant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		reminder.ID, reminder.Title, reminder.Description, reminder.ScheduledAt,
		reminder.Completed, reminder.Priority, reminder.Category, reminder.UserID, reminder.PlantID,
	).Scan(&reminder.CreatedAt)
}

func (r *reminderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Reminder, error) {
	var reminder domain.Reminder
	query := reminderSelect + ` WHERE r.id = $1 AND r.user_id = $2`

	err := r.db.GetContext(ctx, &reminder, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		UPDATE reminders
		SET title = $3, description = $4, scheduled_at = $5, completed = $6,
			priority = $7, category = $8, plant_id = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description, reminder.ScheduledAt,
		reminder.Completed, reminder.Priority, reminder.Category, reminder.PlantID,
	).Scan(&reminder.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReminderNotFound
	}
	return err
}

func (r *reminderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrReminderNotFound)
}

func (r *reminderRepository) List(ctx context.Context, filter domain.ReminderFilter) ([]domain.Reminder, error) {
	where, args := buildReminderWhere(filter)

	order := ` ORDER BY r.scheduled_at ASC`
	if filter.RecentlyUpdatedFirst {
		order = ` ORDER BY COALESCE(r.updated_at, r.created_at) DESC`
	}

	reminders := []domain.Reminder{}
	err := r.db.SelectContext(ctx, &reminders, reminderSelect+where+order, args...)
	return reminders, err
}

func (r *reminderRepository) Count(ctx context.Context, filter domain.ReminderFilter) (int64, error) {
	where, args := buildReminderWhere(filter)

	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reminders r`+where, args...)
	return count, err
}

// buildReminderWhere always scopes to the owner; every other filter field is
// optional.
func buildReminderWhere(f domain.ReminderFilter) (string, []any) {
	conditions := []string{"r.user_id = $1"}
	args := []any{f.UserID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != nil {
		add("r.category ILIKE '%%' || $%d || '%%'", escapeLike(*f.Category))
	}
	if f.Priority != nil {
		add("r.priority = $%d", *f.Priority)
	}
	if f.Completed != nil {
		add("r.completed = $%d", *f.Completed)
	}
	if f.PlantID != nil {
		add("r.plant_id = $%d", *f.PlantID)
	}
	if f.Search != nil {
		args = append(args, escapeLike(*f.Search))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(r.title ILIKE '%%' || $%d || '%%' OR r.description ILIKE '%%' || $%d || '%%' OR r.category ILIKE '%%' || $%d || '%%')",
			n, n, n))
	}
	if f.ScheduledFrom != nil {
		add("r.scheduled_at >= $%d", *f.ScheduledFrom)
	}
	if f.ScheduledBefore != nil {
		add("r.scheduled_at < $%d", *f.ScheduledBefore)
	}
	if f.ScheduledUntil != nil {
		add("r.scheduled_at <= $%d", *f.ScheduledUntil)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}
