package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scanplant/internal/domain"
)

type ReminderRepository struct {
	mock.Mock
}

func (m *ReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *ReminderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Reminder, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *ReminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *ReminderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *ReminderRepository) List(ctx context.Context, filter domain.ReminderFilter) ([]domain.Reminder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

func (m *ReminderRepository) Count(ctx context.Context, filter domain.ReminderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
