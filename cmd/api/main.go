package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"scanplant/internal/config"
	"scanplant/internal/handler"
	"scanplant/internal/metrics"
	"scanplant/internal/middleware"
	"scanplant/internal/pkg/i18n"
	"scanplant/internal/repository"
	"scanplant/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if err := i18n.LoadTranslations(cfg.LocalesPath); err != nil {
		log.Printf("Warning: Failed to load translations from %s: %v (using built-in labels)", cfg.LocalesPath, err)
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := config.NewRedisClient(cfg); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (caching disabled)", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (image upload will not work)", err)
	}

	var kafkaClient *kgo.Client
	if len(cfg.KafkaBrokers) > 0 {
		if client, err := config.NewKafkaClient(cfg); err != nil {
			log.Printf("Warning: Failed to connect to Kafka: %v (kafka notifications disabled)", err)
		} else {
			kafkaClient = client
			defer kafkaClient.Close()
		}
	}

	m := metrics.New()
	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, redisClient, minioClient, kafkaClient, m, cfg)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(cfg.JWTSecret))

	plants := protected.Group("/plants")
	plants.Get("/", h.Plant.List)
	plants.Get("/mine", h.Plant.ListMine)
	plants.Get("/nearby", h.Plant.Nearby)
	plants.Get("/search", h.Plant.Search)
	plants.Post("/", h.Plant.Create)
	plants.Get("/:plantId", h.Plant.Get)
	plants.Put("/:plantId", h.Plant.Update)
	plants.Delete("/:plantId", h.Plant.Delete)

	plantComments := protected.Group("/plants/:plantId/comments")
	plantComments.Post("/", h.Comment.Create)
	plantComments.Get("/", h.Comment.List)

	comments := protected.Group("/comments")
	comments.Get("/mine", h.Comment.ListMine)
	comments.Get("/:commentId", h.Comment.Get)
	comments.Put("/:commentId", h.Comment.Update)
	comments.Delete("/:commentId", h.Comment.Delete)

	reminders := protected.Group("/reminders")
	reminders.Get("/", h.Reminder.List())
	reminders.Get("/pending", h.Reminder.Pending())
	reminders.Get("/completed", h.Reminder.Completed())
	reminders.Get("/overdue", h.Reminder.Overdue())
	reminders.Get("/today", h.Reminder.Today())
	reminders.Get("/next-7-days", h.Reminder.Next7Days())
	reminders.Get("/search", h.Reminder.Search())
	reminders.Get("/statistics", h.Reminder.Statistics)
	reminders.Get("/category/:category", h.Reminder.ByCategory())
	reminders.Get("/priority/:priority", h.Reminder.ByPriority())
	reminders.Get("/plant/:plantId", h.Reminder.ByPlant())
	reminders.Post("/", h.Reminder.Create)
	reminders.Get("/:reminderId", h.Reminder.Get)
	reminders.Put("/:reminderId", h.Reminder.Update)
	reminders.Patch("/:reminderId/complete", h.Reminder.SetCompleted)
	reminders.Delete("/:reminderId", h.Reminder.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Post("/", h.Notification.Create)
	notifications.Get("/:id", h.Notification.Get)
	notifications.Put("/:id", h.Notification.Update)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Delete("/:id", h.Notification.Delete)
}
