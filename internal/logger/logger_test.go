package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "")
	l.Info().Str("component", "test").Msg("Hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %q", err, buf.String())
	}
	if entry["message"] != "Hello" || entry["component"] != "test" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	if err := Setup(cfg); err == nil {
		t.Errorf("Setup() expected error for unknown level")
	}
}

func TestSetupWritesToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "opsconsole.log")
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("GlobalLevel() = %v, want debug", zerolog.GlobalLevel())
	}
}
