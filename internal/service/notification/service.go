package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scanplant/internal/domain"
	"scanplant/internal/metrics"
	"scanplant/internal/repository"
	"scanplant/internal/service/dispatch"
)

type Service interface {
	List(ctx context.Context, caller domain.Caller, filter domain.NotificationFilter) ([]domain.Notification, error)
	GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Notification, error)
	Create(ctx context.Context, caller domain.Caller, input domain.CreateNotificationInput) (*domain.Notification, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateNotificationInput) (*domain.Notification, error)
	Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error
	MarkAsRead(ctx context.Context, caller domain.Caller, id uuid.UUID, read bool) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, caller domain.Caller) (int64, error)
	GetUnreadCount(ctx context.Context, caller domain.Caller) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	plantRepo repository.PlantRepository
	userRepo  repository.UserRepository
	sender    dispatch.Sender
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(
	notifRepo repository.NotificationRepository,
	plantRepo repository.PlantRepository,
	userRepo repository.UserRepository,
	sender dispatch.Sender,
	opts ...Option,
) Service {
	s := &service{
		notifRepo: notifRepo,
		plantRepo: plantRepo,
		userRepo:  userRepo,
		sender:    sender,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, caller domain.Caller, filter domain.NotificationFilter) ([]domain.Notification, error) {
	filter.UserID = caller.UserID
	if filter.Type != nil {
		t := strings.TrimSpace(*filter.Type)
		if t == "" {
			filter.Type = nil
		} else {
			filter.Type = &t
		}
	}

	notifications, err := s.notifRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range notifications {
		notifications[i].Status = notifications[i].CurrentStatus()
	}
	return notifications, nil
}

func (s *service) GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Notification, error) {
	return s.getOwn(ctx, caller, id)
}

// Create persists the notification as Pending, hands it to the sender and
// then records it as Sent. A failed dispatch leaves it Pending and is
// returned to the caller.
func (s *service) Create(ctx context.Context, caller domain.Caller, input domain.CreateNotificationInput) (*domain.Notification, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	recipient := caller.UserID
	if caller.IsAdmin && input.TargetUserID != nil && *input.TargetUserID != caller.UserID {
		exists, err := s.userRepo.ExistsByID(ctx, *input.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check target user: %w", err)
		}
		if !exists {
			return nil, domain.ErrTargetUserNotFound
		}
		recipient = *input.TargetUserID
	}

	notif := &domain.Notification{
		ID:     uuid.New(),
		UserID: recipient,
	}
	if err := s.apply(ctx, notif, input.NotificationInput); err != nil {
		return nil, err
	}

	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, err
	}
	s.metrics.IncNotificationCreated()

	err := s.sender.Dispatch(ctx, notif)
	s.metrics.ObserveDispatch(err)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch notification: %w", err)
	}

	sentAt := s.now().UTC()
	if err := s.notifRepo.MarkSent(ctx, notif.ID, sentAt); err != nil {
		return nil, err
	}
	notif.SentAt = &sentAt
	notif.Status = notif.CurrentStatus()

	return notif, nil
}

func (s *service) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateNotificationInput) (*domain.Notification, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	notif, err := s.getAccessible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, notif, input.NotificationInput); err != nil {
		return nil, err
	}

	if err := s.notifRepo.Update(ctx, notif); err != nil {
		return nil, err
	}

	notif.Status = notif.CurrentStatus()
	return notif, nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	if _, err := s.getAccessible(ctx, caller, id); err != nil {
		return err
	}
	return s.notifRepo.Delete(ctx, id)
}

// MarkAsRead toggles the read timestamp. Marking unread falls back to Sent or
// Pending depending on whether the notification was ever dispatched.
func (s *service) MarkAsRead(ctx context.Context, caller domain.Caller, id uuid.UUID, read bool) (*domain.Notification, error) {
	notif, err := s.getOwn(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var readAt *time.Time
	if read {
		readAt = notif.ReadAt
		if readAt == nil {
			now := s.now().UTC()
			readAt = &now
		}
	}

	if err := s.notifRepo.SetReadAt(ctx, id, readAt); err != nil {
		return nil, err
	}

	notif.ReadAt = readAt
	notif.Status = notif.CurrentStatus()
	return notif, nil
}

func (s *service) MarkAllAsRead(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.notifRepo.MarkAllAsRead(ctx, caller.UserID, s.now().UTC())
}

func (s *service) GetUnreadCount(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.notifRepo.CountUnread(ctx, caller.UserID)
}

// apply copies the editable fields, checking that a plant reference belongs
// to the recipient.
func (s *service) apply(ctx context.Context, notif *domain.Notification, in domain.NotificationInput) error {
	notif.PlantScientificName = nil
	notif.PlantCommonName = nil

	if in.PlantID != nil {
		plant, err := s.plantRepo.GetByID(ctx, *in.PlantID)
		if err != nil {
			return err
		}
		if plant == nil || plant.UserID != notif.UserID {
			return domain.ErrInvalidNotifPlantRef
		}
		notif.PlantScientificName = &plant.ScientificName
		notif.PlantCommonName = plant.CommonName
	}

	notif.Title = in.Title
	notif.Message = in.Message
	notif.Type = in.Type
	notif.LinkURL = in.LinkURL
	notif.PlantID = in.PlantID
	return nil
}

// getOwn loads a notification addressed to the caller. Admins get no
// exception here.
func (s *service) getOwn(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif == nil || notif.UserID != caller.UserID {
		return nil, domain.ErrNotificationNotFound
	}
	notif.Status = notif.CurrentStatus()
	return notif, nil
}

func (s *service) getAccessible(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif == nil || !caller.CanAccess(notif.UserID) {
		return nil, domain.ErrNotificationNotFound
	}
	return notif, nil
}
