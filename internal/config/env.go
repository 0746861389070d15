package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override config.toml.
const (
	EnvSession         = "GUFTAGU_SESSION"
	EnvSeed            = "GUFTAGU_SEED"
	EnvPushEndpoint    = "GUFTAGU_PUSH_ENDPOINT"
	EnvPushP256dh      = "GUFTAGU_PUSH_P256DH"
	EnvPushAuth        = "GUFTAGU_PUSH_AUTH"
	EnvVAPIDPublicKey  = "GUFTAGU_VAPID_PUBLIC_KEY"
	EnvVAPIDPrivateKey = "GUFTAGU_VAPID_PRIVATE_KEY"
	EnvPushSubscriber  = "GUFTAGU_PUSH_SUBSCRIBER"
)

// LoadDotenv loads variables from the given .env files (default ".env")
// without overriding the process environment. Missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides cfg with any GUFTAGU_* variables that are set.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvSession); v != "" {
		cfg.DefaultSession = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Seed = b
		}
	}
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvPushEndpoint, &cfg.Push.Endpoint},
		{EnvPushP256dh, &cfg.Push.P256dh},
		{EnvPushAuth, &cfg.Push.Auth},
		{EnvVAPIDPublicKey, &cfg.Push.VAPIDPublicKey},
		{EnvVAPIDPrivateKey, &cfg.Push.VAPIDPrivateKey},
		{EnvPushSubscriber, &cfg.Push.Subscriber},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}
