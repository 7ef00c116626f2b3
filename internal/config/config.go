package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
const EnvPrefix = "SPA"

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	Notifications NotificationsConfig `toml:"notifications"`
	Booking       BookingConfig       `toml:"booking"`
	RateLimit     RateLimitConfig     `toml:"rate_limit" split_words:"true"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`     // секунды
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`    // секунды
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate" split_words:"true"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	SlotsTTLSeconds int    `toml:"slots_ttl_seconds" envconfig:"SLOTS_TTL_SECONDS"`
}

type NotificationsConfig struct {
	Enabled          bool   `toml:"enabled"`
	AMQPURL          string `toml:"amqp_url" envconfig:"AMQP_URL"`
	Exchange         string `toml:"exchange"`
	PublishTimeoutMs int    `toml:"publish_timeout_ms" envconfig:"PUBLISH_TIMEOUT_MS"`
}

type BookingConfig struct {
	DefaultSlotMinutes int `toml:"default_slot_minutes" split_words:"true"`
	MinNoticeMinutes   int `toml:"min_notice_minutes" split_words:"true"`
	AdvanceBookingDays int `toml:"advance_booking_days" split_words:"true"`
	TxTimeoutSeconds   int `toml:"tx_timeout_seconds" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load читает конфигурацию: .env (если есть) -> TOML -> переменные окружения SPA_* -> значения по умолчанию
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "spa_booking"
	}

	setDefault(&c.Redis.SlotsTTLSeconds, 300)

	if c.Notifications.Exchange == "" {
		c.Notifications.Exchange = "spa.reservations"
	}
	setDefault(&c.Notifications.PublishTimeoutMs, 2000)

	setDefault(&c.Booking.DefaultSlotMinutes, 30)
	setDefault(&c.Booking.TxTimeoutSeconds, 5)

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 50
	}
	setDefault(&c.RateLimit.Burst, 100)
}

// Validate отклоняет заведомо невозможную конфигурацию
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535:
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	case c.Database.Host == "":
		return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
	case c.Database.DBName == "":
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	case c.Booking.DefaultSlotMinutes < 0:
		return fmt.Errorf("%w: booking.default_slot_minutes must be positive", ErrInvalidConfig)
	case c.Booking.MinNoticeMinutes < 0:
		return fmt.Errorf("%w: booking.min_notice_minutes must not be negative", ErrInvalidConfig)
	case c.Booking.AdvanceBookingDays < 0:
		return fmt.Errorf("%w: booking.advance_booking_days must not be negative", ErrInvalidConfig)
	case c.Redis.Enabled && c.Redis.Addr == "":
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	case c.Notifications.Enabled && c.Notifications.AMQPURL == "":
		return fmt.Errorf("%w: notifications.amqp_url is required when notifications are enabled", ErrInvalidConfig)
	case c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("%w: rate_limit.rps and rate_limit.burst must be positive", ErrInvalidConfig)
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
