package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	defer Init(DefaultConfig()) //nolint:errcheck

	Info().Str("table", "metrics").Msg("Loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "Loaded" {
		t.Errorf("Expected message 'Loaded', got %v", entry["message"])
	}
	if entry["table"] != "metrics" {
		t.Errorf("Expected table 'metrics', got %v", entry["table"])
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: FormatJSON, Output: &buf})
	defer Init(DefaultConfig()) //nolint:errcheck

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("Warn message should be logged at warn level")
	}
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "info", Format: FormatJSON, Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init(DefaultConfig()) //nolint:errcheck

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown level", Config{Level: "loud", Format: FormatJSON}},
		{"unknown format", Config{Level: "info", Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Init(tt.cfg); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	// The previous logger stays in place.
	Info().Msg("still here")
	if !strings.Contains(buf.String(), "\"message\":\"still here\"") {
		t.Errorf("Expected previous logger to be kept, got %q", buf.String())
	}
}

func TestInitEmptyLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Format: FormatJSON, Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init(DefaultConfig()) //nolint:errcheck

	Debug().Msg("debug")
	Info().Msg("info")

	out := buf.String()
	if strings.Contains(out, "\"message\":\"debug\"") {
		t.Error("Debug message should be filtered at the default level")
	}
	if !strings.Contains(out, "\"message\":\"info\"") {
		t.Error("Info message should be logged at the default level")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: FormatJSON, Output: &buf})
	defer Init(DefaultConfig()) //nolint:errcheck

	log := Component("server")
	log.Info().Msg("listening")

	if !strings.Contains(buf.String(), "\"component\":\"server\"") {
		t.Errorf("Expected component field, got %q", buf.String())
	}
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: FormatJSON, Output: &buf})
	defer Init(DefaultConfig()) //nolint:errcheck

	tests := []struct {
		level string
		event func() *zerolog.Event
	}{
		{"debug", Debug},
		{"info", Info},
		{"warn", Warn},
		{"error", Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.event().Msg("hello")

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.level {
				t.Errorf("Expected level %s, got %v", tt.level, entry["level"])
			}
		})
	}
}
