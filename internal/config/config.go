package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Transport  TransportConfig  `yaml:"transport"`
	Auth       AuthConfig       `yaml:"auth"`
	Simulation SimulationConfig `yaml:"simulation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" validate:"oneof=http stdio"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SimulationConfig controls the clock and the scheduler.
type SimulationConfig struct {
	TickInterval         time.Duration `yaml:"tick_interval" validate:"required,gt=0"`
	InGameSecondsPerTick float64       `yaml:"in_game_seconds_per_tick" validate:"gt=0"`
	RefundFraction       float64       `yaml:"refund_fraction" validate:"gte=0,lte=1"`
	PlayerParallelism    int           `yaml:"player_parallelism" validate:"min=1"`
	DefaultPlayer        string        `yaml:"default_player" validate:"required"`
}

// RateLimitConfig throttles mutating requests per player. Zero disables it.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" validate:"gte=0"`
	Burst     int     `yaml:"burst" validate:"gte=0"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "foreman.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Simulation: SimulationConfig{
			TickInterval:         time.Second,
			InGameSecondsPerTick: 60,
			RefundFraction:       0.8,
			PlayerParallelism:    4,
			DefaultPlayer:        "default",
		},
		RateLimit: RateLimitConfig{
			PerSecond: 5,
			Burst:     10,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables, then validates it. An empty path falls back to
// FOREMAN_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FOREMAN_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := ValidateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("FOREMAN_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("FOREMAN_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid FOREMAN_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("FOREMAN_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FOREMAN_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("FOREMAN_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if mode := os.Getenv("FOREMAN_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("FOREMAN_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid FOREMAN_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if interval := os.Getenv("FOREMAN_TICK_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid FOREMAN_TICK_INTERVAL: %w", err)
		}
		cfg.Simulation.TickInterval = d
	}
	if player := os.Getenv("FOREMAN_DEFAULT_PLAYER"); player != "" {
		cfg.Simulation.DefaultPlayer = player
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
