package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"scanplant/internal/config"
	"scanplant/internal/metrics"
	"scanplant/internal/repository"
	"scanplant/internal/service/comment"
	"scanplant/internal/service/dispatch"
	"scanplant/internal/service/email"
	"scanplant/internal/service/notification"
	"scanplant/internal/service/plant"
	"scanplant/internal/service/reminder"
	"scanplant/internal/service/storage"
)

type Services struct {
	Plant        plant.Service
	Comment      comment.Service
	Reminder     reminder.Service
	Notification notification.Service
	Storage      storage.Service
}

func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	minioClient *minio.Client,
	kafkaClient *kgo.Client,
	m *metrics.Metrics,
	cfg *config.Config,
) (*Services, error) {
	storageService := storage.NewService(minioClient, cfg)

	var mailer email.Service
	if cfg.ResendAPIKey != "" {
		mailer = email.NewService(cfg)
	}

	sender, err := dispatch.Build(cfg.NotificationChannels, repos.User, mailer, kafkaClient, cfg.KafkaNotificationTopic)
	if err != nil {
		return nil, err
	}

	plantService := plant.NewService(repos.Plant, storageService, redis, m, plant.Options{
		DefaultRadiusKm: cfg.DefaultNearbyRadiusKm,
		CacheTTL:        cfg.CacheTTL,
	})
	commentService := comment.NewService(repos.Comment, repos.Plant, redis, m, cfg.CacheTTL)
	reminderService := reminder.NewService(repos.Reminder, repos.Plant,
		reminder.WithLocale(cfg.Locale),
		reminder.WithMetrics(m),
	)
	notificationService := notification.NewService(repos.Notification, repos.Plant, repos.User, sender,
		notification.WithMetrics(m),
	)

	return &Services{
		Plant:        plantService,
		Comment:      commentService,
		Reminder:     reminderService,
		Notification: notificationService,
		Storage:      storageService,
	}, nil
}
