package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONWithSessionField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "guftagud.log")
	logger, err := New(path, "work", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("store initialized")
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %s", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["session"] != "work" || entry["msg"] != "store initialized" {
		t.Errorf("entry = %v", entry)
	}
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guftagu.log")
	logger, err := New(path, "main", Options{Debug: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("ignored missing chat")
	_ = logger.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "ignored missing chat") {
		t.Errorf("debug entry not written: %s", data)
	}
}
