// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	StorageMemory = "memory"
	StorageBolt   = "bbolt"
)

// Config holds runtime settings for the SecretKey backend.
//
// Fields:
//   - Address: listen address of the HTTP API.
//   - Storage: "memory" or "bbolt".
//   - DataPath: bbolt database file, used when Storage is "bbolt".
//   - SecretKey: HMAC secret for signing JWTs (HS256). Empty means a random
//     secret per process, which invalidates tokens on restart.
//   - TokenValidityDuration: token lifetime.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Address               string
	Storage               string
	DataPath              string
	SecretKey             string
	TokenValidityDuration time.Duration
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.Storage = StorageMemory
	c.DataPath = "secretkey-server.db"
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("listen address must not be empty")
	}
	switch c.Storage {
	case StorageMemory:
	case StorageBolt:
		if c.DataPath == "" {
			return errors.New("data path must not be empty for bbolt storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.TokenValidityDuration <= 0 {
		return errors.New("token validity must be positive")
	}
	return nil
}

// LoadConfig builds a Config from defaults overlaid with the JSON file at
// path, if path is not empty. Flags are applied by the caller.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
