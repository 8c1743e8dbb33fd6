package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendNotificationEmail(ctx context.Context, toEmail, recipientName, title, message string, link *string) error {
	args := m.Called(ctx, toEmail, recipientName, title, message, link)
	return args.Error(0)
}
