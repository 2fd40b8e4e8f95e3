package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/jobs"
	"hotelbooking/internal/lock"
	"hotelbooking/internal/logging"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/catalog"
	"hotelbooking/internal/repository"
	"hotelbooking/internal/server"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

type stores struct {
	bookings booking.BookingStore
	rooms    catalog.RoomStore
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []server.Check

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = database.Close(db) }()
		checks = append(checks, server.Check{Name: "database", Probe: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}})
	}
	st := initStores(db)

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, server.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	locker, err := initLocker(cfg, redisClient, &logger)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		recorder = metrics.Prometheus{}
	}

	bookingService := booking.NewService(st.bookings, st.rooms, locker, cfg.Booking, recorder, logger)
	catalogService := catalog.NewService(st.rooms, st.bookings, locker, logger)

	scheduler := jobs.NewScheduler(bookingService, logger)
	if err := scheduler.Register(cfg.Jobs); err != nil {
		return err
	}
	scheduler.Start()

	srv := server.New(cfg, []server.RouteRegistrar{
		booking.NewHandler(bookingService, logger),
		catalog.NewHandler(catalogService, logger),
	}, checks, logger)

	return serve(ctx, srv, scheduler, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initDatabase returns nil without a DSN; the API then runs on in-memory stores.
func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		logger.Warn().Msg("database.dsn is empty, bookings are kept in memory")
		return nil, nil
	}

	db, err := database.Connect(cfg.Database, *logger)
	if err != nil {
		logger.Error().Err(err).Msg("init database")
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			_ = database.Close(db)
			logger.Error().Err(err).Msg("migrate database")
			return nil, err
		}
		logger.Info().Msg("database migrated")
	}
	return db, nil
}

func initStores(db *gorm.DB) stores {
	if db == nil {
		return stores{
			bookings: repository.NewMemoryBookingRepository(),
			rooms:    repository.NewMemoryRoomRepository(),
		}
	}
	return stores{
		bookings: repository.NewBookingRepository(db),
		rooms:    repository.NewRoomRepository(db),
	}
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := lock.NewRedisClient(cfg.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis connection failed")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initLocker refuses to fall back to the in-process lock when redis was asked for,
// since several API instances would then race on the same room.
func initLocker(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) (lock.RoomLocker, error) {
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("lock.backend=redis but redis at %s is unreachable", cfg.Redis.Address)
		}
		logger.Info().Msg("using redis room lock")
		return lock.NewRedis(client, cfg.Lock, *logger), nil
	default:
		logger.Info().Msg("using in-process room lock")
		return lock.NewLocal(), nil
	}
}

func serve(ctx context.Context, srv *server.Server, scheduler *jobs.Scheduler, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info().
		Str("addr", srv.Addr()).
		Str("environment", cfg.App.Environment).
		Str("lock_backend", cfg.Lock.Backend).
		Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("http server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	scheduler.Stop(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return runErr
}
