package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanplant/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPlant(ctx context.Context, plantID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Comment, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, plant_id, user_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.PlantID, comment.UserID, comment.Text,
	).Scan(&comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT
			c.id, c.plant_id, c.user_id, c.text, c.created_at, c.updated_at,
			p.scientific_name, COALESCE(u.full_name, '')
		FROM comments c
		INNER JOIN plants p ON p.id = c.plant_id
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	comment, err := scanComment(r.db.QueryRowxContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET text = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, comment.ID, comment.Text).Scan(&comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCommentNotFound
	}
	return err
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrCommentNotFound)
}

func (r *commentRepository) ListByPlant(ctx context.Context, plantID uuid.UUID, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM comments WHERE plant_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, plantID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			c.id, c.plant_id, c.user_id, c.text, c.created_at, c.updated_at,
			p.scientific_name, COALESCE(u.full_name, '')
		FROM comments c
		INNER JOIN plants p ON p.id = c.plant_id
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.plant_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, query, plantID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments, err := collectComments(rows)
	return comments, total, err
}

func (r *commentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT
			c.id, c.plant_id, c.user_id, c.text, c.created_at, c.updated_at,
			p.scientific_name, COALESCE(u.full_name, '')
		FROM comments c
		INNER JOIN plants p ON p.id = c.plant_id
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectComments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	var user domain.CommentUser
	err := row.Scan(
		&c.ID, &c.PlantID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt,
		&c.PlantScientificName, &user.FullName,
	)
	if err != nil {
		return nil, err
	}
	user.ID = c.UserID
	c.User = &user
	return &c, nil
}

func collectComments(rows *sqlx.Rows) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
