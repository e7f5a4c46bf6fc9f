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
	"github.com/storehouse-app/storehouse/internal/bootstrap"
	"github.com/storehouse-app/storehouse/internal/cache"
	"github.com/storehouse-app/storehouse/internal/docstore"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/kafka"
	"github.com/storehouse-app/storehouse/internal/logger"
	"github.com/storehouse-app/storehouse/internal/repository"
	"github.com/storehouse-app/storehouse/internal/service/auth"
	"github.com/storehouse-app/storehouse/internal/service/booking"
	"github.com/storehouse-app/storehouse/internal/service/favorites"
	"github.com/storehouse-app/storehouse/internal/service/properties"
	"github.com/storehouse-app/storehouse/internal/service/stayflow"
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
	favoriteRepo := repository.NewFavoriteRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	propertyService := properties.NewPropertyService(propertyRepo, redisCache)
	stayService := stayflow.NewStayService(propertyRepo, drafts)
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
	favoriteService := favorites.NewFavoriteService(favoriteRepo, propertyRepo)
	authService := auth.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMin)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Properties: propertyService,
		Stay:       stayService,
		Bookings:   bookingService,
		Favorites:  favoriteService,
		Auth:       authService,
		Drafts:     drafts,
		Redis:      redisClient,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
