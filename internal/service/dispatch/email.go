package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"scanplant/internal/domain"
	"scanplant/internal/service/email"
)

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Email mails the notification to the recipient's address.
type Email struct {
	users  userLookup
	mailer email.Service
}

func NewEmail(users userLookup, mailer email.Service) *Email {
	return &Email{users: users, mailer: mailer}
}

func (*Email) Name() string { return "email" }

func (e *Email) Dispatch(ctx context.Context, notif *domain.Notification) error {
	user, err := e.users.GetByID(ctx, notif.UserID)
	if err != nil {
		return fmt.Errorf("failed to get recipient: %w", err)
	}
	if user == nil || user.Email == "" {
		return fmt.Errorf("recipient %s has no email address", notif.UserID)
	}

	return e.mailer.SendNotificationEmail(ctx, user.Email, user.FullName, notif.Title, notif.Message, notif.LinkURL)
}
