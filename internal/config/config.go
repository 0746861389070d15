package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.guftagu/config.toml.
type Config struct {
	DefaultSession string  `toml:"default_session"`
	Seed           bool    `toml:"seed"`
	Timings        Timings `toml:"timings"`
	Ingress        Ingress `toml:"ingress"`
	Push           Push    `toml:"push"`
}

// Timings holds the delays of the simulated lifecycle timers.
type Timings struct {
	Delivered           time.Duration `toml:"delivered"`
	Read                time.Duration `toml:"read"`
	TypingStart         time.Duration `toml:"typing_start"`
	TypingDuration      time.Duration `toml:"typing_duration"`
	CallRinging         time.Duration `toml:"call_ringing"`
	CallConnect         time.Duration `toml:"call_connect"`
	CallTick            time.Duration `toml:"call_tick"`
	StoryTick           time.Duration `toml:"story_tick"`
	StoryStep           int           `toml:"story_step"`
	NotificationDismiss time.Duration `toml:"notification_dismiss"`
}

// Ingress tunes the transport ingress gateway.
type Ingress struct {
	DedupeTTL      time.Duration `toml:"dedupe_ttl"`
	TypingInterval time.Duration `toml:"typing_interval"`
}

// Push configures OS-level web push delivery. Delivery is disabled unless
// a subscription endpoint and VAPID keys are present.
type Push struct {
	Endpoint        string `toml:"endpoint"`
	P256dh          string `toml:"p256dh"`
	Auth            string `toml:"auth"`
	VAPIDPublicKey  string `toml:"vapid_public_key"`
	VAPIDPrivateKey string `toml:"vapid_private_key"`
	Subscriber      string `toml:"subscriber"`
	TTL             int    `toml:"ttl"`
}

// Enabled reports whether enough is configured to send web push messages.
func (p Push) Enabled() bool {
	return p.Endpoint != "" && p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

// DefaultTimings returns the delays the client uses out of the box.
func DefaultTimings() Timings {
	return Timings{
		Delivered:           time.Second,
		Read:                2 * time.Second,
		TypingStart:         500 * time.Millisecond,
		TypingDuration:      3 * time.Second,
		CallRinging:         2 * time.Second,
		CallConnect:         3 * time.Second,
		CallTick:            time.Second,
		StoryTick:           100 * time.Millisecond,
		StoryStep:           2,
		NotificationDismiss: 5 * time.Second,
	}
}

// Default returns a config with every section filled in.
func Default() *Config {
	return &Config{
		Seed:    true,
		Timings: DefaultTimings(),
		Ingress: Ingress{
			DedupeTTL:      10 * time.Minute,
			TypingInterval: time.Second,
		},
		Push: Push{TTL: 30},
	}
}

// Load reads config from the given path on top of Default. Returns nil and
// an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
