package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
)

// EnvServerURL overrides the default server URL.
const EnvServerURL = "SECRETKEY_API_URL"

// S3 is the optional bucket exports are uploaded to instead of ExportDir.
type S3 struct {
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	BaseEndpoint string `json:"base_endpoint"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	Prefix       string `json:"prefix"`
}

// Enabled reports whether exports go to S3.
func (s S3) Enabled() bool {
	return s.Bucket != ""
}

// Config holds runtime settings for the SecretKey CLI.
type Config struct {
	ServerURL      string
	PageSize       int
	DatabasePath   string
	RequestTimeout time.Duration
	ExportDir      string
	LogLevel       string
	S3             S3
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.PageSize = common.DefaultPageSize
	c.DatabasePath = "secretkey.db"
	c.RequestTimeout = 15 * time.Second
	c.ExportDir = "."
	c.LogLevel = "warn"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	if c.DatabasePath == "" {
		return errors.New("database path must not be empty")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults and the environment, then
// overlays values from JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
