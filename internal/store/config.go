package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOrigin is the share-link base when none is configured.
const DefaultOrigin = "http://localhost:5173"

// ConfigKeys are the names accepted by GlobalConfig.Set.
var ConfigKeys = []string{"origin", "log-level", "default-dir"}

// GlobalConfig lives in <config dir>/config.json and applies to every workspace.
type GlobalConfig struct {
	Origin     string `json:"origin,omitempty"`
	LogLevel   string `json:"logLevel,omitempty"`
	DefaultDir string `json:"defaultDir,omitempty"`
}

func (c *GlobalConfig) OriginOrDefault() string {
	if c == nil {
		return DefaultOrigin
	}
	if o := strings.TrimRight(strings.TrimSpace(c.Origin), "/"); o != "" {
		return o
	}
	return DefaultOrigin
}

// Set validates and assigns one config key. An empty value clears it.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "origin":
		if value != "" && !strings.Contains(value, "://") {
			return fmt.Errorf("invalid origin %q (expected scheme://host)", value)
		}
		c.Origin = strings.TrimRight(value, "/")
	case "log-level", "loglevel":
		lvl := strings.ToLower(value)
		switch lvl {
		case "", "debug", "info", "warn", "error":
			c.LogLevel = lvl
		default:
			return fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", value)
		}
	case "default-dir", "defaultdir":
		if value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				return err
			}
			value = abs
		}
		c.DefaultDir = value
	default:
		return fmt.Errorf("unknown config key %q (expected %s)", key, strings.Join(ConfigKeys, "|"))
	}
	return nil
}

// ConfigDir is ~/.planify unless PLANIFY_CONFIG_DIR points elsewhere (tests use this).
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PLANIFY_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home dir: %w", err)
	}
	return filepath.Join(home, ".planify"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig returns an empty config when the file does not exist yet.
func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := &GlobalConfig{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes through a unique temp file and a rename, so concurrent
// writers never leave a torn file behind.
func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "config.json.*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, 0o600)
	return os.Rename(tmp, path)
}
