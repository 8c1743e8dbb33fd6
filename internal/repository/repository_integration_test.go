//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanplant/internal/domain"
	"scanplant/internal/pkg/testutil/containers"
	"scanplant/internal/repository"
)

func seedUser(t *testing.T, db *sqlx.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)`, id, id.String()+"@example.com", name)
	require.NoError(t, err)
	return id
}

func seedPlant(t *testing.T, repos *repository.Repositories, owner uuid.UUID, scientific string, common *string) *domain.Plant {
	t.Helper()
	p := &domain.Plant{
		ID:             uuid.New(),
		ImageURL:       "http://localhost:9000/scanplant-images/plant-" + uuid.NewString() + ".jpg",
		ScientificName: scientific,
		CommonName:     common,
		Latitude:       48.8566,
		Longitude:      2.3522,
		UserID:         owner,
	}
	require.NoError(t, repos.Plant.Create(context.Background(), p))
	return p
}

func strPtr(s string) *string { return &s }

func TestPlantRepository(t *testing.T) {
	db := containers.NewPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	alice := seedUser(t, db, "Alice")
	bob := seedUser(t, db, "Bob")

	fern := seedPlant(t, repos, alice, "Nephrolepis exaltata", strPtr("Boston fern"))
	time.Sleep(10 * time.Millisecond)
	ficus := seedPlant(t, repos, bob, "Ficus lyrata", strPtr("Fiddle-leaf fig"))

	all, err := repos.Plant.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ficus.ID, all[0].ID, "newest first")

	mine, err := repos.Plant.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, fern.ID, mine[0].ID)

	nobody, err := repos.Plant.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []domain.Plant{}, nobody)

	found, err := repos.Plant.Search(ctx, "FERN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fern.ID, found[0].ID)

	none, err := repos.Plant.Search(ctx, "100%_")
	require.NoError(t, err)
	assert.NotNil(t, none, "empty results encode as []")
	assert.Empty(t, none)

	ok, err := repos.Plant.Exists(ctx, fern.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Plant.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	fern.ScientificName = "Nephrolepis cordifolia"
	require.NoError(t, repos.Plant.Update(ctx, fern))
	got, err := repos.Plant.GetByID(ctx, fern.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nephrolepis cordifolia", got.ScientificName)
	assert.Equal(t, alice, got.UserID)

	missing, err := repos.Plant.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repos.Plant.Update(ctx, &domain.Plant{ID: uuid.New(), ScientificName: "x"}), domain.ErrPlantNotFound)
}

func TestPlantDelete_CascadesCommentsAndNullsReferences(t *testing.T) {
	db := containers.NewPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner")
	p := seedPlant(t, repos, owner, "Monstera deliciosa", nil)

	c := &domain.Comment{ID: uuid.New(), PlantID: p.ID, UserID: owner, Text: "Lovely leaves"}
	require.NoError(t, repos.Comment.Create(ctx, c))

	r := &domain.Reminder{ID: uuid.New(), Title: "Mist", ScheduledAt: time.Now().Add(time.Hour), Priority: domain.PriorityMedium, UserID: owner, PlantID: &p.ID}
	require.NoError(t, repos.Reminder.Create(ctx, r))

	n := &domain.Notification{ID: uuid.New(), UserID: owner, Type: "info", Title: "t", Message: "m", PlantID: &p.ID}
	require.NoError(t, repos.Notification.Create(ctx, n))

	require.NoError(t, repos.Plant.Delete(ctx, p.ID))

	gotComment, err := repos.Comment.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gotComment)

	gotReminder, err := repos.Reminder.GetByID(ctx, r.ID, owner)
	require.NoError(t, err)
	require.NotNil(t, gotReminder)
	assert.Nil(t, gotReminder.PlantID)
	assert.Nil(t, gotReminder.PlantScientificName)

	gotNotif, err := repos.Notification.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, gotNotif)
	assert.Nil(t, gotNotif.PlantID)

	assert.ErrorIs(t, repos.Plant.Delete(ctx, p.ID), domain.ErrPlantNotFound)
}

func TestCommentRepository_Pagination(t *testing.T) {
	db := containers.NewPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	author := seedUser(t, db, "Carol")
	p := seedPlant(t, repos, author, "Aloe vera", nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, repos.Comment.Create(ctx, &domain.Comment{ID: uuid.New(), PlantID: p.ID, UserID: author, Text: "note"}))
	}

	page, total, err := repos.Comment.ListByPlant(ctx, p.ID, domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.NotNil(t, page[0].User)
	assert.Equal(t, "Carol", page[0].User.FullName)
	assert.Equal(t, "Aloe vera", page[0].PlantScientificName)

	mine, err := repos.Comment.ListByUser(ctx, author)
	require.NoError(t, err)
	assert.Len(t, mine, 5)

	c := mine[0]
	c.Text = "edited"
	require.NoError(t, repos.Comment.Update(ctx, &c))
	assert.NotNil(t, c.UpdatedAt)
}

func TestReminderRepository_Filters(t *testing.T) {
	db := containers.NewPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	owner := seedUser(t, db, "Dana")
	other := seedUser(t, db, "Eve")
	fern := seedPlant(t, repos, owner, "Nephrolepis exaltata", strPtr("Boston fern"))

	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	water := &domain.Reminder{ID: uuid.New(), Title: "Water the fern", Description: "Use rain water", ScheduledAt: day.Add(9 * time.Hour), Priority: domain.PriorityHigh, Category: "Watering", UserID: owner, PlantID: &fern.ID}
	feed := &domain.Reminder{ID: uuid.New(), Title: "Fertilize", ScheduledAt: day.Add(-48 * time.Hour), Priority: domain.PriorityLow, Category: "Feeding", UserID: owner}
	repot := &domain.Reminder{ID: uuid.New(), Title: "Repot", ScheduledAt: day.Add(5 * 24 * time.Hour), Priority: domain.PriorityMedium, Category: "Care", Completed: true, UserID: owner}
	foreign := &domain.Reminder{ID: uuid.New(), Title: "Water cactus", ScheduledAt: day, Priority: domain.PriorityHigh, Category: "Watering", UserID: other}
	for _, r := range []*domain.Reminder{water, feed, repot, foreign} {
		require.NoError(t, repos.Reminder.Create(ctx, r))
	}

	all, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{feed.ID, water.ID, repot.ID}, reminderIDs(all), "scheduled ascending")
	assert.Equal(t, "Nephrolepis exaltata", *all[1].PlantScientificName)

	category := "water"
	watering, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID}, reminderIDs(watering))

	term := "RAIN"
	searched, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner, Search: &term})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID}, reminderIDs(searched))

	from, before := day, day.Add(24*time.Hour)
	today, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner, ScheduledFrom: &from, ScheduledBefore: &before})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID}, reminderIDs(today))

	until := day.Add(7 * 24 * time.Hour)
	week, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner, ScheduledFrom: &from, ScheduledUntil: &until})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{water.ID, repot.ID}, reminderIDs(week))

	pending := false
	count, err := repos.Reminder.Count(ctx, domain.ReminderFilter{UserID: owner, Completed: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	high := domain.PriorityHigh
	count, err = repos.Reminder.Count(ctx, domain.ReminderFilter{UserID: owner, Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repos.Reminder.GetByID(ctx, foreign.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, got)

	foreign.UserID = owner
	assert.ErrorIs(t, repos.Reminder.Update(ctx, foreign), domain.ErrReminderNotFound)
	assert.ErrorIs(t, repos.Reminder.Delete(ctx, foreign.ID, owner), domain.ErrReminderNotFound)

	feed.Completed = true
	require.NoError(t, repos.Reminder.Update(ctx, feed))
	require.NotNil(t, feed.UpdatedAt)

	done := true
	completed, err := repos.Reminder.List(ctx, domain.ReminderFilter{UserID: owner, Completed: &done, RecentlyUpdatedFirst: true})
	require.NoError(t, err)
	assert.Equal(t, feed.ID, completed[0].ID, "most recently updated first")
}

func TestNotificationRepository_Lifecycle(t *testing.T) {
	db := containers.NewPostgres(t)
	repos := repository.NewRepositories(db)
	ctx := context.Background()

	recipient := seedUser(t, db, "Frank")
	other := seedUser(t, db, "Grace")

	first := &domain.Notification{ID: uuid.New(), UserID: recipient, Type: "Reminder", Title: "Water", Message: "Fern is dry"}
	second := &domain.Notification{ID: uuid.New(), UserID: recipient, Type: "info", Title: "Hello", Message: "Welcome"}
	foreign := &domain.Notification{ID: uuid.New(), UserID: other, Type: "info", Title: "Other", Message: "m"}
	for _, n := range []*domain.Notification{first, second, foreign} {
		require.NoError(t, repos.Notification.Create(ctx, n))
	}
	_, err := db.Exec(`UPDATE notifications SET created_at = $2 WHERE id = $1`, first.ID, time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE notifications SET created_at = $2 WHERE id = $1`, second.ID, time.Date(2025, 4, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	sentAt := time.Date(2025, 4, 3, 12, 0, 1, 0, time.UTC)
	require.NoError(t, repos.Notification.MarkSent(ctx, second.ID, sentAt))
	got, err := repos.Notification.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SentAt)
	assert.Equal(t, domain.NotifSent, got.CurrentStatus())

	readAt := sentAt.Add(time.Minute)
	require.NoError(t, repos.Notification.SetReadAt(ctx, second.ID, &readAt))

	yes, no := true, false
	unread, err := repos.Notification.List(ctx, domain.NotificationFilter{UserID: recipient, Unread: &yes})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, notificationIDs(unread))

	read, err := repos.Notification.List(ctx, domain.NotificationFilter{UserID: recipient, Unread: &no})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, notificationIDs(read))

	typ := "reminder"
	byType, err := repos.Notification.List(ctx, domain.NotificationFilter{UserID: recipient, Type: &typ})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, notificationIDs(byType))

	from := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	ranged, err := repos.Notification.List(ctx, domain.NotificationFilter{UserID: recipient, CreatedFrom: &from, CreatedTo: &to})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, notificationIDs(ranged))

	all, err := repos.Notification.List(ctx, domain.NotificationFilter{UserID: recipient})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, notificationIDs(all), "newest first")

	require.NoError(t, repos.Notification.SetReadAt(ctx, second.ID, nil))
	count, err := repos.Notification.CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	marked, err := repos.Notification.MarkAllAsRead(ctx, recipient, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	count, err = repos.Notification.CountUnread(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	exists, err := repos.User.ExistsByID(ctx, recipient)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repos.User.ExistsByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func reminderIDs(rs []domain.Reminder) []uuid.UUID {
	out := make([]uuid.UUID, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func notificationIDs(ns []domain.Notification) []uuid.UUID {
	out := make([]uuid.UUID, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}
