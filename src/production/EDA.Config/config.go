package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// MQTT configuration
	MQTT MQTTConfig `json:"mqtt"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`

	// Clock configuration
	Clock ClockConfig `json:"clock"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	GinMode      string        `json:"gin_mode"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds MongoDB-related configuration
type DatabaseConfig struct {
	URI            string        `json:"-"`
	Name           string        `json:"name"`
	Collection     string        `json:"collection"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	TimeSeries     bool          `json:"time_series"`
}

// MQTTConfig holds settings for the acknowledgment publisher.
// An empty BrokerHost disables publishing.
type MQTTConfig struct {
	BrokerHost  string `json:"broker_host"`
	BrokerPort  int    `json:"broker_port"`
	BrokerUser  string `json:"broker_user"`
	BrokerPass  string `json:"-"`
	UseTLS      bool   `json:"use_tls"`
	CACertPath  string `json:"ca_cert_path"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration. No origins means CORS is off.
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
	MaxAge         int      `json:"max_age"`
}

// ClockConfig holds the fixed offset used to stamp readings
type ClockConfig struct {
	ZoneName string        `json:"zone_name"`
	Offset   time.Duration `json:"offset"`
}

// Load loads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	// A missing .env file is fine; variables may be set directly.
	_ = godotenv.Load()

	env := &envReader{}

	config := &Config{
		Server: ServerConfig{
			Host:         env.str("HOST", "0.0.0.0"),
			Port:         env.str("PORT", "5000"),
			GinMode:      env.str("GIN_MODE", "release"),
			ReadTimeout:  env.duration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: env.duration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  env.duration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URI:            env.str("MONGO_URI", ""),
			Name:           env.str("MONGO_DB_NAME", "energy_db"),
			Collection:     env.str("MONGO_COLLECTION", "sensor_readings"),
			ConnectTimeout: env.duration("MONGO_CONNECT_TIMEOUT", 20*time.Second),
			TimeSeries:     env.boolean("MONGO_TIMESERIES", false),
		},
		MQTT: MQTTConfig{
			BrokerHost:  env.str("BROKER_HOST", ""),
			BrokerPort:  env.integer("BROKER_PORT", 1883),
			BrokerUser:  env.str("BROKER_USER", ""),
			BrokerPass:  env.str("BROKER_PASS", ""),
			UseTLS:      env.boolean("BROKER_TLS", false),
			CACertPath:  env.str("BROKER_CA_FILE", ""),
			ClientID:    env.str("MQTT_CLIENT_ID", "energy-api"),
			TopicPrefix: env.str("MQTT_TOPIC_PREFIX", "energy/sensor_readings"),
		},
		Logging: LoggingConfig{
			Level:        env.str("LOG_LEVEL", "info"),
			Format:       env.str("LOG_FORMAT", "text"),
			Output:       env.str("LOG_OUTPUT", "stdout"),
			EnableCaller: env.boolean("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: env.stringSlice("CORS_ALLOWED_ORIGINS", nil),
			MaxAge:         env.integer("CORS_MAX_AGE", 43200), // 12 hours
		},
		Clock: ClockConfig{
			ZoneName: env.str("TIMEZONE_NAME", "EAT"),
			Offset:   env.duration("TIMEZONE_OFFSET", 3*time.Hour),
		},
	}

	if err := env.err(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Database.Name == "" || c.Database.Collection == "" {
		return fmt.Errorf("MONGO_DB_NAME and MONGO_COLLECTION must not be empty")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.Clock.Offset%time.Second != 0 {
		return fmt.Errorf("TIMEZONE_OFFSET must be a whole number of seconds, got %s", c.Clock.Offset)
	}
	return nil
}

// Address returns the host:port the HTTP server binds to
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// MQTTEnabled reports whether the acknowledgment publisher should be started
func (c *Config) MQTTEnabled() bool {
	return c.MQTT.BrokerHost != ""
}

// CORSEnabled reports whether the CORS middleware should be installed
func (c *Config) CORSEnabled() bool {
	return len(c.CORS.AllowedOrigins) > 0
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *Config) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// envReader collects parse failures so Load can report all of them at once.
type envReader struct {
	errs []error
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func (r *envReader) str(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) integer(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return intValue
}

func (r *envReader) boolean(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	r.errs = append(r.errs, fmt.Errorf("invalid %s: %q (expected true/false or 1/0)", key, value))
	return defaultValue
}

func (r *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return duration
}

func (r *envReader) stringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
