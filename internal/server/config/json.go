package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/secretkey/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept both strings such as "12h" and integer nanoseconds. Zero values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	Address               string         `json:"address"`
	Storage               string         `json:"storage"`
	DataPath              string         `json:"data_path"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	LogLevel              string         `json:"log_level"`
}

func parseJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]string{
		&cfg.Address:   jc.Address,
		&cfg.Storage:   jc.Storage,
		&cfg.DataPath:  jc.DataPath,
		&cfg.SecretKey: jc.SecretKey,
		&cfg.LogLevel:  jc.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.TokenValidityDuration.Duration != 0 {
		cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	return nil
}
