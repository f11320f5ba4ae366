package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	PostgresURL    string
	MigrationsPath string
	StaticDir      string
	CatalogLimit   int
	ServiceVersion string

	Session struct {
		TTL           time.Duration
		SecureCookies bool
	}

	Kafka struct {
		Brokers       []string
		Topic         string
		NotifierGroup string
	}

	OTLPEndpoint string
	MailerURL    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "file://migrations"),
		StaticDir:      getenv("STATIC_DIR", "static"),
		ServiceVersion: getenv("SERVICE_VERSION", "0.1.0"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		MailerURL:      os.Getenv("MAILER_URL"),
	}

	limit, err := strconv.Atoi(getenv("CATALOG_LIMIT", "6"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("CATALOG_LIMIT must be a positive integer")
	}
	cfg.CatalogLimit = limit

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration: %q", os.Getenv("SESSION_TTL"))
	}
	cfg.Session.TTL = ttl

	secure, err := strconv.ParseBool(getenv("SECURE_COOKIES", "false"))
	if err != nil {
		return nil, fmt.Errorf("SECURE_COOKIES must be a boolean: %w", err)
	}
	cfg.Session.SecureCookies = secure

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	cfg.Kafka.Topic = getenv("ORDERS_TOPIC", "order.events")
	cfg.Kafka.NotifierGroup = getenv("NOTIFIER_GROUP", "order-notifier")

	return cfg, nil
}

// Require reports the first of the named settings that is empty. Each
// binary names only what it uses.
func (c *Config) Require(names ...string) error {
	for _, name := range names {
		var set bool
		switch name {
		case "POSTGRES_URL":
			set = c.PostgresURL != ""
		case "KAFKA_BROKERS":
			set = len(c.Kafka.Brokers) > 0
		case "MAILER_URL":
			set = c.MailerURL != ""
		default:
			return fmt.Errorf("unknown setting %s", name)
		}
		if !set {
			return fmt.Errorf("%s must be set", name)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
