package config

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrNoKafkaBrokers = errors.New("KAFKA_BROKERS is not set")

func NewKafkaClient(cfg *Config) (*kgo.Client, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, ErrNoKafkaBrokers
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.KafkaBrokers...),
		kgo.DefaultProduceTopic(cfg.KafkaNotificationTopic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
