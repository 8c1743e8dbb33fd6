package reminder_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scanplant/internal/domain"
	"scanplant/internal/service/reminder"
	"scanplant/tests/mocks"
)

// memReminders is an in-memory ReminderRepository that applies filters the
// way the SQL repository does.
type memReminders struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Reminder
	now   func() time.Time
}

func newMemReminders(now func() time.Time) *memReminders {
	return &memReminders{items: map[uuid.UUID]domain.Reminder{}, now: now}
}

func (m *memReminders) Create(ctx context.Context, r *domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = m.now()
	m.items[r.ID] = *r
	return nil
}

func (m *memReminders) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

func (m *memReminders) Update(ctx context.Context, r *domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[r.ID]
	if !ok || existing.UserID != r.UserID {
		return domain.ErrReminderNotFound
	}
	now := m.now()
	r.UpdatedAt = &now
	m.items[r.ID] = *r
	return nil
}

func (m *memReminders) Delete(ctx context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return domain.ErrReminderNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memReminders) List(ctx context.Context, f domain.ReminderFilter) ([]domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Reminder{}
	for _, r := range m.items {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.RecentlyUpdatedFirst {
			return lastTouched(out[i]).After(lastTouched(out[j]))
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (m *memReminders) Count(ctx context.Context, f domain.ReminderFilter) (int64, error) {
	list, _ := m.List(ctx, f)
	return int64(len(list)), nil
}

func lastTouched(r domain.Reminder) time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matches(r domain.Reminder, f domain.ReminderFilter) bool {
	switch {
	case r.UserID != f.UserID:
		return false
	case f.Category != nil && !containsFold(r.Category, *f.Category):
		return false
	case f.Priority != nil && r.Priority != *f.Priority:
		return false
	case f.Completed != nil && r.Completed != *f.Completed:
		return false
	case f.PlantID != nil && (r.PlantID == nil || *r.PlantID != *f.PlantID):
		return false
	case f.Search != nil && !containsFold(r.Title, *f.Search) && !containsFold(r.Description, *f.Search) && !containsFold(r.Category, *f.Search):
		return false
	case f.ScheduledFrom != nil && r.ScheduledAt.Before(*f.ScheduledFrom):
		return false
	case f.ScheduledBefore != nil && !r.ScheduledAt.Before(*f.ScheduledBefore):
		return false
	case f.ScheduledUntil != nil && r.ScheduledAt.After(*f.ScheduledUntil):
		return false
	}
	return true
}

type fixture struct {
	svc    reminder.Service
	repo   *memReminders
	plants *mocks.PlantRepository
	now    time.Time
}

func newFixture(now time.Time) *fixture {
	f := &fixture{now: now, plants: new(mocks.PlantRepository)}
	clock := func() time.Time { return f.now }
	f.repo = newMemReminders(clock)
	f.svc = reminder.NewService(f.repo, f.plants, reminder.WithClock(clock))
	return f
}

func (f *fixture) create(t *testing.T, caller domain.Caller, title string, at time.Time, priority domain.Priority) *domain.Reminder {
	t.Helper()
	r, err := f.svc.Create(context.Background(), caller, domain.CreateReminderInput{ReminderInput: domain.ReminderInput{
		Title:       title,
		ScheduledAt: at,
		Priority:    priority,
		Category:    "watering",
	}})
	require.NoError(t, err)
	return r
}

func ids(rs []domain.Reminder) []uuid.UUID {
	out := make([]uuid.UUID, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestWaterTheFernLifecycle(t *testing.T) {
	f := newFixture(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}

	fern := f.create(t, caller, "Water the fern", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0)
	assert.Equal(t, domain.PriorityMedium, fern.Priority, "priority defaults to medium")
	assert.True(t, fern.Overdue)
	assert.Equal(t, -2, fern.DaysRemaining)
	assert.Equal(t, "Medium", fern.PriorityLabel)
	assert.Nil(t, fern.UpdatedAt)

	overdue, err := f.svc.ListOverdue(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fern.ID}, ids(overdue))

	done, err := f.svc.SetCompleted(ctx, caller, fern.ID, true)
	require.NoError(t, err)
	assert.False(t, done.Overdue)
	assert.NotNil(t, done.UpdatedAt)

	overdue, _ = f.svc.ListOverdue(ctx, caller)
	pending, _ := f.svc.ListPending(ctx, caller)
	completed, _ := f.svc.ListCompleted(ctx, caller)
	assert.Empty(t, overdue)
	assert.Empty(t, pending)
	assert.Equal(t, []uuid.UUID{fern.ID}, ids(completed))
}

func TestOtherUsersRemindersAreInvisible(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	alice := domain.Caller{UserID: uuid.New()}
	bob := domain.Caller{UserID: uuid.New()}
	admin := domain.Caller{UserID: uuid.New(), IsAdmin: true}

	r := f.create(t, alice, "Repot cactus", f.now.Add(-time.Hour), domain.PriorityHigh)

	for _, caller := range []domain.Caller{bob, admin} {
		lists := []func(context.Context, domain.Caller) ([]domain.Reminder, error){
			f.svc.ListByOwner, f.svc.ListPending, f.svc.ListOverdue, f.svc.ListToday, f.svc.ListNext7Days,
		}
		for _, list := range lists {
			got, err := list(ctx, caller)
			require.NoError(t, err)
			assert.NotContains(t, ids(got), r.ID)
		}

		_, err := f.svc.GetByID(ctx, caller, r.ID)
		assert.ErrorIs(t, err, domain.ErrReminderNotFound)

		_, err = f.svc.SetCompleted(ctx, caller, r.ID, true)
		assert.ErrorIs(t, err, domain.ErrReminderNotFound)

		err = f.svc.Delete(ctx, caller, r.ID)
		assert.ErrorIs(t, err, domain.ErrReminderNotFound)
	}

	_, errMissing := f.svc.Update(ctx, bob, uuid.New(), domain.UpdateReminderInput{ReminderInput: domain.ReminderInput{Title: "x", ScheduledAt: f.now}})
	_, errForeign := f.svc.Update(ctx, bob, r.ID, domain.UpdateReminderInput{ReminderInput: domain.ReminderInput{Title: "x", ScheduledAt: f.now}})
	assert.ErrorIs(t, errMissing, domain.ErrReminderNotFound)
	assert.ErrorIs(t, errForeign, domain.ErrReminderNotFound)
}

func TestDateBuckets(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}
	startOfDay := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	yesterday := f.create(t, caller, "yesterday", startOfDay.Add(-time.Second), 1)
	morning := f.create(t, caller, "morning", startOfDay, 1)
	evening := f.create(t, caller, "evening", startOfDay.Add(23*time.Hour), 1)
	tomorrow := f.create(t, caller, "tomorrow", startOfDay.Add(24*time.Hour), 1)
	weekEdge := f.create(t, caller, "week edge", startOfDay.AddDate(0, 0, 7), 1)
	pastWeek := f.create(t, caller, "past week", startOfDay.AddDate(0, 0, 7).Add(time.Second), 1)

	today, err := f.svc.ListToday(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{morning.ID, evening.ID}, ids(today))

	week, err := f.svc.ListNext7Days(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{morning.ID, evening.ID, tomorrow.ID, weekEdge.ID}, ids(week))
	assert.NotContains(t, ids(week), pastWeek.ID)

	overdue, err := f.svc.ListOverdue(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{yesterday.ID, morning.ID}, ids(overdue))

	assert.Equal(t, 0, evening.DaysRemaining)
	assert.Equal(t, 1, tomorrow.DaysRemaining)
	assert.Equal(t, 7, weekEdge.DaysRemaining)
}

func TestStatistics(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}

	a := f.create(t, caller, "a", now.Add(-48*time.Hour), domain.PriorityHigh)
	f.create(t, caller, "b", now.Add(-time.Hour), domain.PriorityHigh)
	f.create(t, caller, "c", now.Add(time.Hour), domain.PriorityLow)
	f.create(t, caller, "d", now.Add(72*time.Hour), domain.PriorityMedium)
	f.create(t, domain.Caller{UserID: uuid.New()}, "other", now, domain.PriorityHigh)

	_, err := f.svc.SetCompleted(ctx, caller, a.ID, true)
	require.NoError(t, err)

	stats, err := f.svc.Statistics(ctx, caller)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, stats.Completed+stats.Pending, stats.Total)
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, int64(2), stats.DueToday)
	assert.Equal(t, int64(1), stats.HighPriorityPending)
	assert.Equal(t, 25.0, stats.CompletionPercent)
}

func TestStatistics_RoundsPercentAndHandlesEmpty(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(now)
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}

	stats, err := f.svc.Statistics(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.CompletionPercent)
	assert.Equal(t, int64(0), stats.Total)

	first := f.create(t, caller, "1", now.Add(time.Hour), 1)
	f.create(t, caller, "2", now.Add(time.Hour), 1)
	f.create(t, caller, "3", now.Add(time.Hour), 1)
	_, err = f.svc.SetCompleted(ctx, caller, first.ID, true)
	require.NoError(t, err)

	stats, err = f.svc.Statistics(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, 33.33, stats.CompletionPercent)
}

func TestStatistics_CountErrorPropagates(t *testing.T) {
	repo := new(mocks.ReminderRepository)
	svc := reminder.NewService(repo, new(mocks.PlantRepository))
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := svc.Statistics(context.Background(), domain.Caller{UserID: uuid.New()})
	assert.EqualError(t, err, "db down")
}

func TestCreate_PlantReferenceMustBelongToCaller(t *testing.T) {
	f := newFixture(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}
	common := "Boston fern"
	own := &domain.Plant{ID: uuid.New(), UserID: caller.UserID, ScientificName: "Nephrolepis exaltata", CommonName: &common}
	foreign := &domain.Plant{ID: uuid.New(), UserID: uuid.New()}
	missing := uuid.New()

	f.plants.On("GetByID", ctx, own.ID).Return(own, nil)
	f.plants.On("GetByID", ctx, foreign.ID).Return(foreign, nil)
	f.plants.On("GetByID", ctx, missing).Return(nil, nil)

	input := func(plantID uuid.UUID) domain.CreateReminderInput {
		return domain.CreateReminderInput{ReminderInput: domain.ReminderInput{Title: "Mist", ScheduledAt: f.now, PlantID: &plantID}}
	}

	r, err := f.svc.Create(ctx, caller, input(own.ID))
	require.NoError(t, err)
	assert.Equal(t, "Nephrolepis exaltata", *r.PlantScientificName)
	assert.Equal(t, "Boston fern", *r.PlantCommonName)

	for _, id := range []uuid.UUID{foreign.ID, missing} {
		_, err := f.svc.Create(ctx, caller, input(id))
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "reminder's plant reference invalid")
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(time.Now())
	caller := domain.Caller{UserID: uuid.New()}
	base := domain.ReminderInput{Title: "ok", ScheduledAt: time.Now()}

	cases := map[string]func(in *domain.ReminderInput){
		"blank title":      func(in *domain.ReminderInput) { in.Title = "   " },
		"long title":       func(in *domain.ReminderInput) { in.Title = strings.Repeat("t", 101) },
		"long description": func(in *domain.ReminderInput) { in.Description = strings.Repeat("d", 501) },
		"long category":    func(in *domain.ReminderInput) { in.Category = strings.Repeat("c", 51) },
		"priority too big": func(in *domain.ReminderInput) { in.Priority = 4 },
		"negative prio":    func(in *domain.ReminderInput) { in.Priority = -1 },
		"no date":          func(in *domain.ReminderInput) { in.ScheduledAt = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.svc.Create(context.Background(), caller, domain.CreateReminderInput{ReminderInput: in})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdate_ReplacesFieldsAndCompletion(t *testing.T) {
	f := newFixture(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}
	r := f.create(t, caller, "old", f.now.Add(time.Hour), domain.PriorityLow)

	f.now = f.now.Add(time.Minute)
	updated, err := f.svc.Update(ctx, caller, r.ID, domain.UpdateReminderInput{
		ReminderInput: domain.ReminderInput{Title: "new", ScheduledAt: f.now.Add(2 * time.Hour), Priority: domain.PriorityHigh, Category: "pruning"},
		Completed:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "pruning", updated.Category)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, "High", updated.PriorityLabel)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, f.now, *updated.UpdatedAt)
}

func TestListCompleted_MostRecentlyTouchedFirst(t *testing.T) {
	f := newFixture(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}

	first := f.create(t, caller, "first", f.now.Add(time.Hour), 1)
	second := f.create(t, caller, "second", f.now.Add(2*time.Hour), 1)

	f.now = f.now.Add(time.Minute)
	_, err := f.svc.SetCompleted(ctx, caller, second.ID, true)
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.svc.SetCompleted(ctx, caller, first.ID, true)
	require.NoError(t, err)

	completed, err := f.svc.ListCompleted(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, ids(completed))
}

func TestFilters(t *testing.T) {
	f := newFixture(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.New()}

	water := f.create(t, caller, "Water the fern", f.now.Add(time.Hour), domain.PriorityHigh)
	feed, err := f.svc.Create(ctx, caller, domain.CreateReminderInput{ReminderInput: domain.ReminderInput{
		Title: "Feed", Description: "Liquid FERTILIZER", Category: "Nutrition", ScheduledAt: f.now.Add(2 * time.Hour),
	}})
	require.NoError(t, err)

	byCategory, err := f.svc.ListByCategory(ctx, caller, "NUTRI")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{feed.ID}, ids(byCategory))

	byPriority, err := f.svc.ListByPriority(ctx, caller, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID}, ids(byPriority))

	_, err = f.svc.ListByPriority(ctx, caller, 5)
	assert.ErrorIs(t, err, domain.ErrValidation)

	found, err := f.svc.Search(ctx, caller, "fertilizer")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{feed.ID}, ids(found))

	found, err = f.svc.Search(ctx, caller, "fern")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID}, ids(found))

	_, err = f.svc.Search(ctx, caller, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOverdueMatchesDefinition(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		scheduled time.Time
		completed bool
		want      bool
	}{
		{now.Add(-time.Nanosecond), false, true},
		{now, false, false},
		{now.Add(time.Hour), false, false},
		{now.Add(-time.Hour), true, false},
	}
	for _, c := range cases {
		r := domain.Reminder{ScheduledAt: c.scheduled, Completed: c.completed}
		assert.Equal(t, c.want, r.IsOverdue(now))
	}
}
