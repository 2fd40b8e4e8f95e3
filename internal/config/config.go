package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"

	defaultPort             = 8080
	defaultPageSize         = 10
	defaultMaxPageSize      = 100
	defaultCompleteSchedule = "0 3 * * *"
	defaultMetricsPath      = "/metrics"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Lock       LockConfig       `yaml:"lock"`
	Booking    BookingConfig    `yaml:"booking"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string      `yaml:"cors_origins"`
}

// DatabaseConfig.DSN selects the driver: postgres:// or postgresql:// for Postgres,
// anything else is a SQLite path. Empty DSN keeps everything in memory.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LockConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
}

type BookingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

type JobsConfig struct {
	CompleteStays CronJobConfig `yaml:"complete_stays"`
}

type CronJobConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	Path              string `yaml:"path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// Load reads an optional .env, expands ${VARS} in the YAML at configPath and applies defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expandedData, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}

	switch c.Lock.Backend {
	case LockBackendLocal:
	case LockBackendRedis:
		if c.Redis.Address == "" {
			return errors.New("lock.backend=redis requires redis.address")
		}
	default:
		return fmt.Errorf("unknown lock.backend %q", c.Lock.Backend)
	}

	if c.Booking.DefaultPageSize > c.Booking.MaxPageSize {
		return fmt.Errorf("booking.default_page_size %d exceeds booking.max_page_size %d",
			c.Booking.DefaultPageSize, c.Booking.MaxPageSize)
	}

	if c.Jobs.CompleteStays.Enabled && strings.TrimSpace(c.Jobs.CompleteStays.Schedule) == "" {
		return errors.New("jobs.complete_stays.schedule is required when the job is enabled")
	}

	if c.Monitoring.PrometheusEnabled && !strings.HasPrefix(c.Monitoring.Path, "/") {
		return fmt.Errorf("monitoring.path %q must start with /", c.Monitoring.Path)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hotel-booking"
	}
	if c.App.Environment == "" {
		c.App.Environment = "dev"
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = defaultPort
	}
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}

	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Lock.Backend == "" {
		c.Lock.Backend = LockBackendLocal
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 10 * time.Second
	}
	if c.Lock.RetryInterval == 0 {
		c.Lock.RetryInterval = 50 * time.Millisecond
	}
	if c.Lock.WaitTimeout == 0 {
		c.Lock.WaitTimeout = 5 * time.Second
	}

	if c.Booking.DefaultPageSize == 0 {
		c.Booking.DefaultPageSize = defaultPageSize
	}
	if c.Booking.MaxPageSize == 0 {
		c.Booking.MaxPageSize = defaultMaxPageSize
	}

	if c.Jobs.CompleteStays.Schedule == "" {
		c.Jobs.CompleteStays.Schedule = defaultCompleteSchedule
	}

	if c.Monitoring.Path == "" {
		c.Monitoring.Path = defaultMetricsPath
	}
}

// Default returns a config with every default applied, as if loaded from an empty file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Environment))
	return env == "prod" || env == "production" || env == "release"
}
