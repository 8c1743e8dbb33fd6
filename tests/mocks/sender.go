package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"scanplant/internal/domain"
)

type Sender struct {
	mock.Mock
}

func (m *Sender) Name() string {
	return "mock"
}

func (m *Sender) Dispatch(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}
