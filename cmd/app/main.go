package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/tourbooking/config"
	"github.com/zvrva/tourbooking/internal/bootstrap"
	"github.com/zvrva/tourbooking/internal/cache"
	"github.com/zvrva/tourbooking/internal/kafka"
	"github.com/zvrva/tourbooking/internal/repository"
	"github.com/zvrva/tourbooking/internal/service/activities"
	"github.com/zvrva/tourbooking/internal/service/availability"
	"github.com/zvrva/tourbooking/internal/service/booking"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ActivitiesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	activityRepo := repository.NewActivityRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	activityService := activities.NewActivityService(activityRepo, redisCache)
	availabilityService := availability.NewAvailabilityService(bookingRepo, activityRepo, cfg.Booking.MaxCalendarDays)
	// The admission path reads the catalog straight from the repository:
	// capacity and prices must be current at decision time, not cached.
	bookingService := booking.NewBookingService(
		bookingRepo,
		activityRepo,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Booking.DepositPercent,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, activityService, availabilityService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
