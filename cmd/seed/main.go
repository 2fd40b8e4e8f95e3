package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/logging"
	"hotelbooking/internal/repository"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type roomSeed struct {
	RoomNumber    string `yaml:"room_number"`
	RoomType      string `yaml:"room_type"`
	PricePerNight int64  `yaml:"price_per_night"`
	MaxGuests     int    `yaml:"max_guests"`
	Inactive      bool   `yaml:"inactive"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required for seeding")
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := baseLogger.With().Str("component", "seed").Logger()

	seeds, err := loadRooms(&logger)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := repository.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rooms := repository.NewRoomRepository(db)
	created := 0
	for _, s := range seeds {
		if _, err := rooms.FindByNumber(ctx, s.RoomNumber); err == nil {
			logger.Info().Str("room_number", s.RoomNumber).Msg("room exists, skipping")
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		room := &domain.Room{
			RoomNumber:    s.RoomNumber,
			RoomType:      s.RoomType,
			PricePerNight: s.PricePerNight,
			MaxGuests:     s.MaxGuests,
			IsActive:      !s.Inactive,
		}
		if err := rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("create room %s: %w", s.RoomNumber, err)
		}
		created++
	}

	logger.Info().Int("created", created).Int("total", len(seeds)).Msg("rooms seeded")
	return nil
}

func loadRooms(logger *zerolog.Logger) ([]roomSeed, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = "configs/rooms.yaml"
	}
	data, err := os.ReadFile(roomsPath)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("read rooms")
		return nil, err
	}

	var file struct {
		Rooms []roomSeed `yaml:"rooms"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("parse rooms")
		return nil, err
	}

	for _, r := range file.Rooms {
		if r.RoomNumber == "" || r.PricePerNight <= 0 || r.MaxGuests < 1 {
			return nil, fmt.Errorf("invalid room %+v in %s", r, roomsPath)
		}
	}
	return file.Rooms, nil
}
