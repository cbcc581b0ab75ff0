package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/SAP-F-2025/diet-service/internal/validator"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Environment string     `validate:"required,oneof=development test production"`
	Port        string     `validate:"required,numeric"`
	LogLevel    slog.Level `validate:"-"`

	StoreDriver string `validate:"oneof=postgres memory"`
	Database    DatabaseConfig
	RedisURL    string

	PasswordHasher string `validate:"oneof=bcrypt argon2"`
	DefaultLocale  string `validate:"locale"`

	Kafka   KafkaConfig
	Casdoor CasdoorConfig
}

type DatabaseConfig struct {
	URL      string
	Host     string `validate:"required_without=URL"`
	Port     string `validate:"required_without=URL"`
	User     string
	Password string
	Name     string `validate:"required_without=URL"`
	SSLMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// DSN prefers DATABASE_URL and otherwise assembles a keyword/value string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type KafkaConfig struct {
	Brokers []string
	Topic   string `validate:"required"`
}

// Enabled reports whether events go to Kafka instead of the in-process bus.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type CasdoorConfig struct {
	Endpoint     string `validate:"omitempty,url"`
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// Enabled reports whether Bearer tokens should be accepted.
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != "" && c.Cert != ""
}

// LoadConfig reads the environment, optionally seeded from a .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Environment: get("ENVIRONMENT", "development"),
		Port:        get("PORT", "8080"),
		LogLevel:    parseLevel(get("LOG_LEVEL", "info")),
		StoreDriver: get("STORE_DRIVER", StoreDriverPostgres),
		Database: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "diet"),
			SSLMode:  get("DB_SSLMODE", "disable"),
		},
		RedisURL:       get("REDIS_URL", ""),
		PasswordHasher: get("PASSWORD_HASHER", "bcrypt"),
		DefaultLocale:  get("DEFAULT_LOCALE", "us"),
		Kafka: KafkaConfig{
			Brokers: splitList(get("KAFKA_BROKERS", "")),
			Topic:   get("EVENTS_TOPIC", "diet.events"),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     get("CASDOOR_ENDPOINT", ""),
			ClientID:     get("CASDOOR_CLIENT_ID", ""),
			ClientSecret: get("CASDOOR_CLIENT_SECRET", ""),
			Cert:         get("CASDOOR_CERT", ""),
			Organization: get("CASDOOR_ORGANIZATION", ""),
			Application:  get("CASDOOR_APPLICATION", ""),
		},
	}

	if errs := validator.NewBusinessValidator().Validate(cfg); errs != nil {
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
