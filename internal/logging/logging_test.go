// Package logging tests console logger construction.
package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.WarnLevel},
		{"verbose", log.WarnLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
		{"xml", log.TextFormatter},
	}

	for _, tt := range tests {
		if got := ParseFormatter(tt.in); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DefaultOptions())

	logger.Info("hidden")
	logger.Warn("shown", "path", "tasks.json")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "tasks.json") {
		t.Errorf("warn line missing: %q", out)
	}
	if !strings.Contains(out, Prefix) {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "debug", LogFormat: "json"}
	logger := FromConfig(&buf, cfg)

	logger.Debug("Loaded tasks", "count", 3)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "Loaded tasks" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("count: got %v", entry["count"])
	}
}

func TestFromConfigNil(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&buf, nil)

	if logger.GetLevel() != log.WarnLevel {
		t.Errorf("level: got %v, want warn", logger.GetLevel())
	}
}
