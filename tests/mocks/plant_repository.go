package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scanplant/internal/domain"
)

type PlantRepository struct {
	mock.Mock
}

func (m *PlantRepository) Create(ctx context.Context, plant *domain.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

func (m *PlantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plant), args.Error(1)
}

func (m *PlantRepository) Update(ctx context.Context, plant *domain.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

func (m *PlantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PlantRepository) List(ctx context.Context) ([]domain.Plant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plant), args.Error(1)
}

func (m *PlantRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Plant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plant), args.Error(1)
}

func (m *PlantRepository) Search(ctx context.Context, term string) ([]domain.Plant, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plant), args.Error(1)
}

func (m *PlantRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
