package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"scanplant/internal/domain"
	"scanplant/tests/mocks"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

type stubSender struct {
	name  string
	err   error
	calls int
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Dispatch(ctx context.Context, notif *domain.Notification) error {
	s.calls++
	return s.err
}

func newNotification() *domain.Notification {
	plantID := uuid.New()
	return &domain.Notification{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      "reminder",
		Title:     "Water the fern",
		Message:   "It is due today.",
		PlantID:   &plantID,
		CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestKafka_PublishesKeyedEvent(t *testing.T) {
	producer := &fakeProducer{}
	k := NewKafka(producer, "scanplant.notifications")
	notif := newNotification()

	err := k.Dispatch(context.Background(), notif)
	require.NoError(t, err)

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "scanplant.notifications", rec.Topic)
	assert.Equal(t, notif.UserID.String(), string(rec.Key))

	var event map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &event))
	assert.Equal(t, notif.ID.String(), event["id"])
	assert.Equal(t, "Water the fern", event["title"])
	assert.Equal(t, notif.PlantID.String(), event["plant_id"])
}

func TestKafka_ProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("no brokers")}
	k := NewKafka(producer, "t")

	err := k.Dispatch(context.Background(), newNotification())
	assert.ErrorContains(t, err, "no brokers")
}

func TestEmail_SendsToRecipient(t *testing.T) {
	users := new(mocks.UserRepository)
	mailer := new(mocks.EmailService)
	notif := newNotification()

	users.On("GetByID", mock.Anything, notif.UserID).
		Return(&domain.User{ID: notif.UserID, Email: "ana@example.com", FullName: "Ana"}, nil)
	mailer.On("SendNotificationEmail", mock.Anything, "ana@example.com", "Ana", notif.Title, notif.Message, notif.LinkURL).
		Return(nil)

	err := NewEmail(users, mailer).Dispatch(context.Background(), notif)
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestEmail_UnknownRecipient(t *testing.T) {
	users := new(mocks.UserRepository)
	mailer := new(mocks.EmailService)
	notif := newNotification()

	users.On("GetByID", mock.Anything, notif.UserID).Return(nil, nil)

	err := NewEmail(users, mailer).Dispatch(context.Background(), notif)
	assert.Error(t, err)
	mailer.AssertNotCalled(t, "SendNotificationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMulti_TriesEveryChannelAndJoinsErrors(t *testing.T) {
	ok := &stubSender{name: "inapp"}
	bad := &stubSender{name: "kafka", err: errors.New("down")}
	last := &stubSender{name: "email"}

	err := NewMulti(ok, bad, last).Dispatch(context.Background(), newNotification())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: down")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, 1, last.calls)
}

func TestBuild(t *testing.T) {
	s, err := Build([]string{"inapp"}, nil, nil, nil, "t")
	require.NoError(t, err)
	assert.Equal(t, "inapp", s.Name())

	s, err = Build([]string{"inapp", "kafka"}, nil, nil, nil, "t")
	require.NoError(t, err)
	assert.Equal(t, "inapp", s.Name(), "unavailable kafka channel is skipped")

	s, err = Build([]string{"inapp", "email"}, new(mocks.UserRepository), new(mocks.EmailService), nil, "t")
	require.NoError(t, err)
	assert.Equal(t, "multi", s.Name())

	s, err = Build(nil, nil, nil, nil, "t")
	require.NoError(t, err)
	assert.Equal(t, "inapp", s.Name())

	_, err = Build([]string{"pigeon"}, nil, nil, nil, "t")
	assert.Error(t, err)
}
