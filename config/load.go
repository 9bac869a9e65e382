package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that points at the config file.
const EnvConfigPath = "GAMENET_CONFIG"

// Load reads the YAML file at path over Default and validates the result.
// An empty path falls back to $GAMENET_CONFIG, then to defaults alone.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		cfg := Default()
		applyEnv(&cfg)
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment references in data, decodes it over Default
// and validates the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	expanded, err := ExpandEnvStrict(string(data))
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv lets a few variables override the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GAMENET_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("GAMENET_LOG_LEVEL"); v != "" {
		cfg.Observe.LogLevel = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" && cfg.Observe.SentryDSN == "" {
		cfg.Observe.SentryDSN = v
	}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Marshal renders cfg as YAML with secrets masked.
func Marshal(cfg Config) ([]byte, error) {
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "***"
	}
	if cfg.Observe.SentryDSN != "" {
		cfg.Observe.SentryDSN = "***"
	}
	return yaml.Marshal(cfg)
}

func defaultBadgerDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gamenet", "credentials")
	}
	return filepath.Join(dir, "gamenet", "credentials")
}
