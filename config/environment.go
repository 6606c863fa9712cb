package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables honoured at load time. They take precedence over the
// configuration file, preserving the original cron contract where the tool
// ran from environment variables alone.
const (
	EnvAPIKey        = "APISPORTS_KEY"
	EnvSeason        = "SEASON"
	EnvOutDir        = "OUT_DIR"
	EnvRetentionDays = "RETENTION_DAYS"
)

func applyEnvironment(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.API.Key = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvSeason)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", EnvSeason, v, err)
		}
		cfg.Season = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		cfg.Snapshot.OutDir = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvRetentionDays)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", EnvRetentionDays, v, err)
		}
		cfg.Snapshot.RetentionDays = n
	}

	// Mirror credentials come from the standard AWS variables when present.
	if cfg.Snapshot.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			cfg.Snapshot.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			cfg.Snapshot.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			cfg.Snapshot.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			cfg.Snapshot.S3.Bucket = strings.TrimSpace(v)
		}
	}

	return nil
}
