package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultSession = "work"
	cfg.Timings.Delivered = 250 * time.Millisecond
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want %q", loaded.DefaultSession, "work")
	}
	if loaded.Timings.Delivered != 250*time.Millisecond {
		t.Errorf("Timings.Delivered = %v, want 250ms", loaded.Timings.Delivered)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "default_session = \"main\"\n\n[timings]\nread = \"4s\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timings.Read != 4*time.Second {
		t.Errorf("Timings.Read = %v, want 4s", cfg.Timings.Read)
	}
	if cfg.Timings.Delivered != time.Second {
		t.Errorf("Timings.Delivered = %v, want default 1s", cfg.Timings.Delivered)
	}
	if cfg.Timings.StoryStep != 2 {
		t.Errorf("Timings.StoryStep = %d, want 2", cfg.Timings.StoryStep)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Timings.TypingStart != 500*time.Millisecond {
		t.Errorf("TypingStart = %v, want 500ms", cfg.Timings.TypingStart)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSession, "work")
	t.Setenv(EnvSeed, "false")
	t.Setenv(EnvPushEndpoint, "https://push.example/abc")

	cfg := Default()
	ApplyEnv(cfg)
	if cfg.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want work", cfg.DefaultSession)
	}
	if cfg.Seed {
		t.Error("Seed = true, want false")
	}
	if cfg.Push.Endpoint != "https://push.example/abc" {
		t.Errorf("Push.Endpoint = %q", cfg.Push.Endpoint)
	}
	if cfg.Push.Enabled() {
		t.Error("push enabled without VAPID keys")
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvPushSubscriber+"=ops@example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPushSubscriber, "")
	os.Unsetenv(EnvPushSubscriber)

	if err := LoadDotenv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotenv() error = %v", err)
	}
	if got := os.Getenv(EnvPushSubscriber); got != "ops@example.com" {
		t.Errorf("%s = %q, want ops@example.com", EnvPushSubscriber, got)
	}
}
