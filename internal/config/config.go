package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Retry    RetryConfig    `koanf:"retry"`
	Logger   LoggerConfig   `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// GatewayConfig holds the remote payment gateway credentials and tuning.
// KeyID and KeySecret are deliberately not required: when either is absent
// the order issuer runs in demo mode and never contacts the gateway.
type GatewayConfig struct {
	KeyID           string        `koanf:"key_id"`
	KeySecret       string        `koanf:"key_secret"`
	BaseURL         string        `koanf:"base_url" validate:"required"`
	ConnTimeout     time.Duration `koanf:"conn_timeout" validate:"required"`
	CallbackBaseURL string        `koanf:"callback_base_url"`
	MinorUnitFactor int64         `koanf:"minor_unit_factor" validate:"required"`
}

// DemoMode reports whether the service lacks usable gateway credentials.
func (g GatewayConfig) DemoMode() bool {
	return g.KeyID == "" || g.KeySecret == ""
}

type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts" validate:"required"`
	Backoff           time.Duration `koanf:"backoff" validate:"required"`
	GatewayBaseDelay  time.Duration `koanf:"gateway_base_delay"`
	GatewayMaxRetries int           `koanf:"gateway_max_retries"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// NewLogger builds the process logger. Production gets JSON output,
// everything else text.
func (l LoggerConfig) NewLogger(appEnv string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(l.Level)}

	var handler slog.Handler
	if appEnv == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("service", "petcare-payments")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// defaults returns a config pre-populated with development defaults.
// Environment variables loaded on top of it win.
func defaults() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "payhub",
			Password:        "payhub",
			Name:            "payhub",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 1 * time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
		},
		Gateway: GatewayConfig{
			BaseURL:         "https://api.razorpay.com",
			ConnTimeout:     10 * time.Second,
			MinorUnitFactor: 100,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			Backoff:           200 * time.Millisecond,
			GatewayBaseDelay:  1 * time.Second,
			GatewayMaxRetries: 3,
		},
		Logger: LoggerConfig{Level: "info"},
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("PAYHUB_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PAYHUB_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := defaults()

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
