package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("PORT", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("MONGO_COLLECTION", "")
	t.Setenv("TIMEZONE_OFFSET", "")
	t.Setenv("BROKER_HOST", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Name != "energy_db" {
		t.Errorf("expected database energy_db, got %q", cfg.Database.Name)
	}
	if cfg.Database.Collection != "sensor_readings" {
		t.Errorf("expected collection sensor_readings, got %q", cfg.Database.Collection)
	}
	if cfg.Address() != "0.0.0.0:5000" {
		t.Errorf("expected address 0.0.0.0:5000, got %q", cfg.Address())
	}
	if cfg.Clock.Offset != 3*time.Hour {
		t.Errorf("expected offset 3h, got %s", cfg.Clock.Offset)
	}
	if cfg.MQTTEnabled() {
		t.Error("expected MQTT to be disabled without BROKER_HOST")
	}
	if cfg.CORSEnabled() {
		t.Error("expected CORS to be disabled without origins")
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without MONGO_URI")
	}
	if !strings.Contains(err.Error(), "MONGO_URI") {
		t.Fatalf("expected error to mention MONGO_URI, got %v", err)
	}
}

func TestLoadReportsEveryInvalidValue(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("BROKER_PORT", "one")
	t.Setenv("MONGO_TIMESERIES", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid values")
	}
	for _, key := range []string{"READ_TIMEOUT", "BROKER_PORT", "MONGO_TIMESERIES"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestLoadParsesOptionalSections(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("BROKER_HOST", "broker.local")
	t.Setenv("BROKER_TLS", "true")
	t.Setenv("BROKER_PORT", "8883")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.example , ,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.GetMQTTBrokerURL(); got != "tcps://broker.local:8883" {
		t.Errorf("unexpected broker url %q", got)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestValidateRejectsFractionalOffset(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "5000"},
		Database: DatabaseConfig{URI: "mongodb://x", Name: "db", Collection: "c"},
		Clock:    ClockConfig{Offset: 1500 * time.Millisecond},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected fractional offset to be rejected")
	}
}
