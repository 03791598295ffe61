package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// SetupはJSON形式でログを出力することを検証
func TestSetup_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("test message", slog.String("key", "value"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
}

// LOG_LEVELでログレベルを変更できることを検証
func TestSetup_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info log to be suppressed at warn level, got %q", buf.String())
	}

	log.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("expected warn log to be emitted")
	}
}
