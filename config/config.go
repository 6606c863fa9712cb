package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Season   int            `yaml:"season"`
	Timezone string         `yaml:"timezone"`
	Leagues  []LeagueConfig `yaml:"leagues"`
	Markets  MarketsConfig  `yaml:"markets"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type APIConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Key          string   `yaml:"key"`
	Timeout      Duration `yaml:"timeout"`
	MaxRetries   int      `yaml:"max_retries"`
	RetryWait    Duration `yaml:"retry_wait"`
	RetryWaitMax Duration `yaml:"retry_wait_max"`
	RateLimit    float64  `yaml:"rate_limit"`
	RateBurst    int      `yaml:"rate_burst"`
	BetsCatalog  bool     `yaml:"bets_catalog"`
}

// LeagueConfig identifies one league to collect. The slice order in the
// configuration is the fetch order, which also fixes merge precedence when
// the same fixture shows up in more than one odds response.
type LeagueConfig struct {
	Code string `yaml:"code"`
	ID   int64  `yaml:"id"`
}

type MarketsConfig struct {
	PreferredBookmakers []string `yaml:"preferred_bookmakers"`
	OverUnderTarget     string   `yaml:"over_under_target"`
}

type SnapshotConfig struct {
	OutDir        string   `yaml:"out_dir"`
	RetentionDays int      `yaml:"retention_days"`
	S3            S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	KeyTemplate     string `yaml:"key_template"`
}

type LoggingConfig struct {
	Level      string           `yaml:"level"`
	Format     string           `yaml:"format"`
	Output     string           `yaml:"output"`
	MaxAge     int              `yaml:"max_age"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
}

// Duration wraps time.Duration so YAML accepts both "25s" strings and bare
// integers, which are read as seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig mirrors the cron deployment: five leagues, the public
// bookmaker preference order and a 90 day archive window. A config file and
// the environment both overlay these values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "https://v3.football.api-sports.io",
			Timeout:      Duration(25 * time.Second),
			MaxRetries:   4,
			RetryWait:    Duration(800 * time.Millisecond),
			RetryWaitMax: Duration(10 * time.Second),
			RateLimit:    0,
			RateBurst:    1,
			BetsCatalog:  true,
		},
		Season:   2025,
		Timezone: "America/Sao_Paulo",
		Leagues: []LeagueConfig{
			{Code: "BR_SERIE_A", ID: 71},
			{Code: "ITA_SERIE_A", ID: 135},
			{Code: "ESP_LALIGA", ID: 140},
			{Code: "ENG_PREMIER", ID: 39},
			{Code: "GER_BUNDESLIGA", ID: 78},
		},
		Markets: MarketsConfig{
			PreferredBookmakers: []string{"Pinnacle", "bet365", "Betfair", "Betway", "William Hill", "Bwin"},
			OverUnderTarget:     "2.5",
		},
		Snapshot: SnapshotConfig{
			OutDir:        "data/odds",
			RetentionDays: 90,
			S3: S3Config{
				KeyTemplate: "{year}/{month}/{date}.json.gz",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
			MaxAge: 7,
			CloudWatch: CloudWatchConfig{
				Namespace: "OddsFlow",
			},
		},
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML
// file when present, then environment overrides. A missing file is not an
// error so the binary can run from environment variables alone.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := applyEnvironment(config); err != nil {
		return nil, err
	}

	config.Snapshot.S3.Bucket = strings.TrimSpace(config.Snapshot.S3.Bucket)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if cfg.API.Key == "" {
		return fmt.Errorf("api.key is required (set APISPORTS_KEY)")
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be greater than 0")
	}
	if cfg.API.MaxRetries < 1 {
		return fmt.Errorf("api.max_retries must be at least 1")
	}

	if cfg.Season <= 0 {
		return fmt.Errorf("season must be greater than 0")
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("timezone '%s' is invalid: %w", cfg.Timezone, err)
	}

	if len(cfg.Leagues) == 0 {
		return fmt.Errorf("at least one league is required")
	}
	for _, lg := range cfg.Leagues {
		if lg.ID <= 0 {
			return fmt.Errorf("league '%s' has invalid id %d", lg.Code, lg.ID)
		}
	}

	if _, err := decimal.NewFromString(cfg.Markets.OverUnderTarget); err != nil {
		return fmt.Errorf("markets.over_under_target '%s' is not numeric", cfg.Markets.OverUnderTarget)
	}

	if cfg.Snapshot.OutDir == "" {
		return fmt.Errorf("snapshot.out_dir is required")
	}

	if cfg.Snapshot.S3.Enabled {
		if cfg.Snapshot.S3.Bucket == "" {
			return fmt.Errorf("snapshot.s3.bucket is required when the mirror is enabled")
		}
		if cfg.Snapshot.S3.Region == "" {
			return fmt.Errorf("snapshot.s3.region is required when the mirror is enabled")
		}
		if !isValidS3Bucket(cfg.Snapshot.S3.Bucket) {
			return fmt.Errorf("snapshot.s3.bucket '%s' is invalid", cfg.Snapshot.S3.Bucket)
		}
		if !strings.Contains(cfg.Snapshot.S3.KeyTemplate, "{date}") {
			return fmt.Errorf("snapshot.s3.key_template must contain the {date} placeholder")
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
