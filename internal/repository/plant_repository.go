package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanplant/internal/domain"
)

type PlantRepository interface {
	Create(ctx context.Context, plant *domain.Plant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error)
	Update(ctx context.Context, plant *domain.Plant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]domain.Plant, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Plant, error)
	Search(ctx context.Context, term string) ([]domain.Plant, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type plantRepository struct {
	db *sqlx.DB
}

func NewPlantRepository(db *sqlx.DB) PlantRepository {
	return &plantRepository{db: db}
}

const plantColumns = `id, image_url, scientific_name, common_name, wiki_description, wiki_url,
	family, genus, care_instructions, enhanced_description, latitude, longitude,
	location_name, city_name, user_id, created_at`

func (r *plantRepository) Create(ctx context.Context, plant *domain.Plant) error {
	query := `
		INSERT INTO plants (id, image_url, scientific_name, common_name, wiki_description, wiki_url,
			family, genus, care_instructions, enhanced_description, latitude, longitude,
			location_name, city_name, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		plant.ID, plant.ImageURL, plant.ScientificName, plant.CommonName,
		plant.WikiDescription, plant.WikiURL, plant.Family, plant.Genus,
		plant.CareInstructions, plant.EnhancedDescription, plant.Latitude, plant.Longitude,
		plant.LocationName, plant.CityName, plant.UserID,
	).Scan(&plant.CreatedAt)
}

func (r *plantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error) {
	var plant domain.Plant
	query := `SELECT ` + plantColumns + ` FROM plants WHERE id = $1`

	err := r.db.GetContext(ctx, &plant, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plant, nil
}

// Update rewrites every editable column. Owner and creation time never change.
func (r *plantRepository) Update(ctx context.Context, plant *domain.Plant) error {
	query := `
		UPDATE plants
		SET image_url = $2, scientific_name = $3, common_name = $4, wiki_description = $5,
			wiki_url = $6, family = $7, genus = $8, care_instructions = $9,
			enhanced_description = $10, latitude = $11, longitude = $12,
			location_name = $13, city_name = $14
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		plant.ID, plant.ImageURL, plant.ScientificName, plant.CommonName,
		plant.WikiDescription, plant.WikiURL, plant.Family, plant.Genus,
		plant.CareInstructions, plant.EnhancedDescription, plant.Latitude, plant.Longitude,
		plant.LocationName, plant.CityName,
	)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrPlantNotFound)
}

func (r *plantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(result, domain.ErrPlantNotFound)
}

func (r *plantRepository) List(ctx context.Context) ([]domain.Plant, error) {
	plants := []domain.Plant{}
	query := `SELECT ` + plantColumns + ` FROM plants ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &plants, query)
	return plants, err
}

func (r *plantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Plant, error) {
	plants := []domain.Plant{}
	query := `SELECT ` + plantColumns + ` FROM plants WHERE user_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &plants, query, userID)
	return plants, err
}

func (r *plantRepository) Search(ctx context.Context, term string) ([]domain.Plant, error) {
	plants := []domain.Plant{}
	query := `
		SELECT ` + plantColumns + ` FROM plants
		WHERE scientific_name ILIKE '%' || $1 || '%'
			OR COALESCE(common_name, '') ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &plants, query, escapeLike(term))
	return plants, err
}

func (r *plantRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM plants WHERE id = $1)`
	err := r.db.GetContext(ctx, &exists, query, id)
	return exists, err
}
