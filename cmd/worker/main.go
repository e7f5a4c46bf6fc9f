package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/storehouse-app/storehouse/config"
	"github.com/storehouse-app/storehouse/internal/cache"
	"github.com/storehouse-app/storehouse/internal/docstore"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/email"
	"github.com/storehouse-app/storehouse/internal/kafka"
	"github.com/storehouse-app/storehouse/internal/logger"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/booking"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.File)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, time.Duration(cfg.Booking.PropertiesCacheTTL)*time.Second)
	drafts := draftstore.NewRedisStore(redisClient)

	documents, err := docstore.NewCloudinaryStore(cfg.Cloudinary.URL, cfg.Cloudinary.UploadFolder)
	if err != nil {
		log.Fatalf("init document store: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	propertyRepo := repository.NewPropertyRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		propertyRepo,
		drafts,
		redisCache,
		documents,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.SubmitTimeoutSeconds)*time.Second,
		time.Duration(cfg.Booking.SubmitLockSeconds)*time.Second,
		time.Duration(cfg.Booking.ReviewTTLHours)*time.Hour,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(cfg.SMTP)

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			if err := emailSender.Send(ctx, event); err != nil {
				logger.Log.WithField("booking_id", event.BookingID).Warnf("send notification email: %v", err)
			}
			return nil
		})
		if err != nil {
			logger.Log.Infof("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				logger.Log.Errorf("expire bookings: %v", err)
				continue
			}
			if len(expired) > 0 {
				logger.Log.Infof("expired %d bookings", len(expired))
			}
		case <-ctx.Done():
			logger.Log.Info("shutting down worker")
			return
		}
	}
}
