package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	config "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Config"
)

func TestNewLoggerSetsGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	NewLogger(&config.LoggingConfig{Level: "WARN", Format: "json"})
	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %s", got)
	}

	NewLogger(&config.LoggingConfig{Level: "nonsense", Format: "json"})
	if got := zerolog.GlobalLevel(); got != zerolog.InfoLevel {
		t.Fatalf("expected fallback to info, got %s", got)
	}
}

func TestWithHelpersAddFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	l := &Logger{&base}

	l.WithRequestID("req-1").
		WithComponent("energy").
		WithError(errors.New("boom")).
		WithFields(map[string]interface{}{"granularity": 15}).
		WithField("id", "665f1c2e9b1d4a0c8e7f1234").
		Info("stored")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}

	want := map[string]interface{}{
		"request_id":  "req-1",
		"component":   "energy",
		"error":       "boom",
		"granularity": float64(15),
		"id":          "665f1c2e9b1d4a0c8e7f1234",
		"message":     "stored",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("field %s = %v, want %v", key, entry[key], value)
		}
	}
}
