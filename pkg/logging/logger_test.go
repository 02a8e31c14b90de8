package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf})

	log.WithGraphID("g-1").WithReason("const-fold").Info("replace")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["graph_id"] != "g-1" {
		t.Errorf("graph_id = %v, want g-1", entry["graph_id"])
	}
	if entry["reason"] != "const-fold" {
		t.Errorf("reason = %v, want const-fold", entry["reason"])
	}
	if entry["msg"] != "replace" {
		t.Errorf("msg = %v, want replace", entry["msg"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}
	log.Warnf("loud %d", 1)
	if !strings.Contains(buf.String(), "loud 1") {
		t.Errorf("warn not logged: %s", buf.String())
	}
}

func TestLogger_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf, Pretty: true})

	log.WithNode("Add").Info("imported")
	out := buf.String()
	if !strings.Contains(out, "node=Add") {
		t.Errorf("text handler missing field: %s", out)
	}
}

func TestLogger_ContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	ctx := log.WithContext(context.Background())
	got := FromContext(ctx)
	if got != log {
		t.Error("FromContext did not return the stored logger")
	}

	// A bare context yields a usable default logger.
	if FromContext(context.Background()) == nil {
		t.Error("FromContext(background) = nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
