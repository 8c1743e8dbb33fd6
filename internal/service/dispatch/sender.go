// Package dispatch delivers persisted notifications to their recipients.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"scanplant/internal/domain"
)

// Sender pushes one notification through a delivery channel.
type Sender interface {
	Name() string
	Dispatch(ctx context.Context, notif *domain.Notification) error
}

// InApp delivers by persistence alone: the recipient reads the stored
// record, so dispatch only logs.
type InApp struct{}

func NewInApp() *InApp {
	return &InApp{}
}

func (*InApp) Name() string { return "inapp" }

func (*InApp) Dispatch(ctx context.Context, notif *domain.Notification) error {
	log.Printf("notification %s delivered in-app to user %s", notif.ID, notif.UserID)
	return nil
}

// Multi sends through every channel and reports all failures together.
type Multi struct {
	senders []Sender
}

func NewMulti(senders ...Sender) *Multi {
	return &Multi{senders: senders}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Dispatch(ctx context.Context, notif *domain.Notification) error {
	var errs []error
	for _, s := range m.senders {
		if err := s.Dispatch(ctx, notif); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
