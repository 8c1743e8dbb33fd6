package reminder

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scanplant/internal/domain"
	"scanplant/internal/metrics"
	"scanplant/internal/pkg/i18n"
	"scanplant/internal/repository"
)

// Service manages the caller's own reminders. Every operation is scoped to
// the caller; other users' reminders are invisible, admins included.
type Service interface {
	ListByOwner(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Reminder, error)
	ListByCategory(ctx context.Context, caller domain.Caller, category string) ([]domain.Reminder, error)
	ListByPriority(ctx context.Context, caller domain.Caller, priority domain.Priority) ([]domain.Reminder, error)
	ListPending(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	ListCompleted(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	ListOverdue(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	ListToday(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	ListNext7Days(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error)
	ListByPlant(ctx context.Context, caller domain.Caller, plantID uuid.UUID) ([]domain.Reminder, error)
	Search(ctx context.Context, caller domain.Caller, term string) ([]domain.Reminder, error)
	Create(ctx context.Context, caller domain.Caller, input domain.CreateReminderInput) (*domain.Reminder, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateReminderInput) (*domain.Reminder, error)
	SetCompleted(ctx context.Context, caller domain.Caller, id uuid.UUID, completed bool) (*domain.Reminder, error)
	Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error
	Statistics(ctx context.Context, caller domain.Caller) (*domain.ReminderStats, error)
}

type service struct {
	reminderRepo repository.ReminderRepository
	plantRepo    repository.PlantRepository
	metrics      *metrics.Metrics
	locale       string
	now          func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocale selects the language of priority labels.
func WithLocale(locale string) Option {
	return func(s *service) { s.locale = locale }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(reminderRepo repository.ReminderRepository, plantRepo repository.PlantRepository, opts ...Option) Service {
	s := &service{
		reminderRepo: reminderRepo,
		plantRepo:    plantRepo,
		locale:       "en",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListByOwner(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID})
}

func (s *service) GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	s.decorate(reminder, s.now())
	return reminder, nil
}

func (s *service) ListByCategory(ctx context.Context, caller domain.Caller, category string) ([]domain.Reminder, error) {
	category = strings.TrimSpace(category)
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID, Category: &category})
}

func (s *service) ListByPriority(ctx context.Context, caller domain.Caller, priority domain.Priority) ([]domain.Reminder, error) {
	if !priority.IsValid() {
		return nil, domain.NewValidationError("priority", "priority must be between 1 (low) and 3 (high)")
	}
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID, Priority: &priority})
}

func (s *service) ListPending(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	completed := false
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID, Completed: &completed})
}

func (s *service) ListCompleted(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	completed := true
	return s.list(ctx, domain.ReminderFilter{
		UserID:               caller.UserID,
		Completed:            &completed,
		RecentlyUpdatedFirst: true,
	})
}

func (s *service) ListOverdue(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	completed := false
	now := s.now().UTC()
	return s.list(ctx, domain.ReminderFilter{
		UserID:          caller.UserID,
		Completed:       &completed,
		ScheduledBefore: &now,
	})
}

// ListToday covers [start of today, start of tomorrow) in UTC regardless of
// completion.
func (s *service) ListToday(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	start := domain.StartOfDayUTC(s.now())
	end := start.Add(24 * time.Hour)
	return s.list(ctx, domain.ReminderFilter{
		UserID:          caller.UserID,
		ScheduledFrom:   &start,
		ScheduledBefore: &end,
	})
}

// ListNext7Days covers [start of today, start of today + 7 days], upper bound
// included.
func (s *service) ListNext7Days(ctx context.Context, caller domain.Caller) ([]domain.Reminder, error) {
	start := domain.StartOfDayUTC(s.now())
	end := start.AddDate(0, 0, 7)
	return s.list(ctx, domain.ReminderFilter{
		UserID:         caller.UserID,
		ScheduledFrom:  &start,
		ScheduledUntil: &end,
	})
}

func (s *service) ListByPlant(ctx context.Context, caller domain.Caller, plantID uuid.UUID) ([]domain.Reminder, error) {
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID, PlantID: &plantID})
}

func (s *service) Search(ctx context.Context, caller domain.Caller, term string) ([]domain.Reminder, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("q", "search term is required")
	}
	return s.list(ctx, domain.ReminderFilter{UserID: caller.UserID, Search: &term})
}

func (s *service) Create(ctx context.Context, caller domain.Caller, input domain.CreateReminderInput) (*domain.Reminder, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	plant, err := s.resolvePlant(ctx, caller, input.PlantID)
	if err != nil {
		return nil, err
	}

	reminder := &domain.Reminder{
		ID:     uuid.New(),
		UserID: caller.UserID,
	}
	applyInput(reminder, input.ReminderInput, plant)

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}

	s.metrics.IncReminderCreated()
	s.decorate(reminder, s.now())
	return reminder, nil
}

// Update replaces every editable field, completion flag included.
func (s *service) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, input domain.UpdateReminderInput) (*domain.Reminder, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	reminder, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	plant, err := s.resolvePlant(ctx, caller, input.PlantID)
	if err != nil {
		return nil, err
	}

	applyInput(reminder, input.ReminderInput, plant)
	reminder.Completed = input.Completed

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, err
	}

	s.decorate(reminder, s.now())
	return reminder, nil
}

func (s *service) SetCompleted(ctx context.Context, caller domain.Caller, id uuid.UUID, completed bool) (*domain.Reminder, error) {
	reminder, err := s.get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	reminder.Completed = completed
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, err
	}

	s.decorate(reminder, s.now())
	return reminder, nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	return s.reminderRepo.Delete(ctx, id, caller.UserID)
}

// Statistics counts the caller's reminders concurrently. Total is derived
// from completed and pending so the snapshot always adds up.
func (s *service) Statistics(ctx context.Context, caller domain.Caller) (*domain.ReminderStats, error) {
	now := s.now().UTC()
	startOfDay := domain.StartOfDayUTC(now)
	endOfDay := startOfDay.Add(24 * time.Hour)
	done, open := true, false
	high := domain.PriorityHigh

	var stats domain.ReminderStats
	counts := []struct {
		dst    *int64
		filter domain.ReminderFilter
	}{
		{&stats.Completed, domain.ReminderFilter{Completed: &done}},
		{&stats.Pending, domain.ReminderFilter{Completed: &open}},
		{&stats.Overdue, domain.ReminderFilter{Completed: &open, ScheduledBefore: &now}},
		{&stats.DueToday, domain.ReminderFilter{ScheduledFrom: &startOfDay, ScheduledBefore: &endOfDay}},
		{&stats.HighPriorityPending, domain.ReminderFilter{Completed: &open, Priority: &high}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		c.filter.UserID = caller.UserID
		g.Go(func() error {
			n, err := s.reminderRepo.Count(gctx, c.filter)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Total = stats.Completed + stats.Pending
	stats.CompletionPercent = completionPercent(stats.Completed, stats.Total)
	return &stats, nil
}

func completionPercent(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

func (s *service) get(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, domain.ErrReminderNotFound
	}
	return reminder, nil
}

func (s *service) list(ctx context.Context, filter domain.ReminderFilter) ([]domain.Reminder, error) {
	reminders, err := s.reminderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range reminders {
		s.decorate(&reminders[i], now)
	}
	return reminders, nil
}

// resolvePlant checks that an optional plant reference points at one of the
// caller's own plants.
func (s *service) resolvePlant(ctx context.Context, caller domain.Caller, plantID *uuid.UUID) (*domain.Plant, error) {
	if plantID == nil {
		return nil, nil
	}
	plant, err := s.plantRepo.GetByID(ctx, *plantID)
	if err != nil {
		return nil, err
	}
	if plant == nil || plant.UserID != caller.UserID {
		return nil, domain.ErrInvalidPlantRef
	}
	return plant, nil
}

func applyInput(r *domain.Reminder, in domain.ReminderInput, plant *domain.Plant) {
	r.Title = in.Title
	r.Description = in.Description
	r.ScheduledAt = in.ScheduledAt.UTC()
	r.Priority = in.Priority
	r.Category = in.Category
	r.PlantID = in.PlantID
	r.PlantScientificName = nil
	r.PlantCommonName = nil
	if plant != nil {
		r.PlantScientificName = &plant.ScientificName
		r.PlantCommonName = plant.CommonName
	}
}

func (s *service) decorate(r *domain.Reminder, now time.Time) {
	r.Overdue = r.IsOverdue(now)
	r.DaysRemaining = r.DaysUntil(now)
	r.PriorityLabel = i18n.Translate(s.locale, r.Priority.Key())
}
