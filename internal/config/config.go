// Package config loads service configuration from the environment. A .env
// file is applied first when present, then the CORPFOOD-prefixed variables
// are parsed into the Config struct.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName    string `envconfig:"SERVICE_NAME"`
	Host           string `envconfig:"SERVICE_HOST" default:"0.0.0.0"`
	Port           int    `envconfig:"SERVICE_PORT" default:"8080"`
	EndpointPrefix string `envconfig:"SERVICE_ENDPOINT_PREFIX"`

	JWTSecret   string `envconfig:"JWT_SECRET"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"24"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"corpfood"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	ConsulAddress string   `envconfig:"CONSUL_ADDRESS" default:"localhost:8500"`
	KafkaBrokers  []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
}

// Load reads the environment into a Config for the named service.
func Load(serviceName string) (Config, error) {
	// Missing .env is fine; containers pass real env vars.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CORPFOOD", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	return cfg, nil
}

// DSN renders the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
