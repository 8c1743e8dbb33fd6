package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"scanplant/internal/domain"
)

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka publishes each notification as a JSON event keyed by recipient so
// one user's events stay ordered within a partition.
type Kafka struct {
	client producer
	topic  string
}

func NewKafka(client producer, topic string) *Kafka {
	return &Kafka{client: client, topic: topic}
}

func (*Kafka) Name() string { return "kafka" }

type notificationEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	LinkURL   *string   `json:"link_url,omitempty"`
	PlantID   *string   `json:"plant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (k *Kafka) Dispatch(ctx context.Context, notif *domain.Notification) error {
	event := notificationEvent{
		ID:        notif.ID.String(),
		UserID:    notif.UserID.String(),
		Type:      notif.Type,
		Title:     notif.Title,
		Message:   notif.Message,
		LinkURL:   notif.LinkURL,
		CreatedAt: notif.CreatedAt,
	}
	if notif.PlantID != nil {
		plantID := notif.PlantID.String()
		event.PlantID = &plantID
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode notification event: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.UserID),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}
	return nil
}
