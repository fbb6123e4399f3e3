package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Trendflow Trendflow       `yaml:"trendflow"`
	Quota     QuotaConfig     `yaml:"quota"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Source    SourceConfig    `yaml:"source"`
	Collector CollectorConfig `yaml:"collector"`
	Writer    WriterConfig    `yaml:"writer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`

	// APIKeys comes exclusively from the environment; never from yaml.
	APIKeys []string `yaml:"-"`
}

type Trendflow struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type QuotaConfig struct {
	DailyBudget int `yaml:"daily_budget"`
}

type YouTubeConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Region            string   `yaml:"region"`
	CategoryID        string   `yaml:"category_id"`
	MaxResults        int      `yaml:"max_results"`
	Timeout           Duration `yaml:"timeout"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
}

type SourceConfig struct {
	Keywords         []string `yaml:"keywords"`
	RelevanceTerms   []string `yaml:"relevance_terms"`
	WatchChannels    []string `yaml:"watch_channels"`
	RecentUploads    int      `yaml:"recent_uploads"`
	SearchWindowDays int      `yaml:"search_window_days"`
	SearchResults    int      `yaml:"search_results"`
}

type CollectorConfig struct {
	OutputDir        string   `yaml:"output_dir"`
	BatchSize        int      `yaml:"batch_size"`
	MinViewCount     int      `yaml:"min_view_count"`
	EnableValidation bool     `yaml:"enable_validation"`
	MaxComments      int      `yaml:"max_comments"`
	BatchPause       Duration `yaml:"batch_pause"`
}

type WriterConfig struct {
	Prefix  string        `yaml:"prefix"`
	Parquet ParquetConfig `yaml:"parquet"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level               string `yaml:"level"`
	Format              string `yaml:"format"`
	Output              string `yaml:"output"`
	MaxAge              int    `yaml:"max_age"`
	CloudWatchNamespace string `yaml:"cloudwatch_namespace"`
}

// LoadConfig reads the yaml configuration, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaults()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Quota: QuotaConfig{DailyBudget: 10000},
		YouTube: YouTubeConfig{
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			Region:            "US",
			CategoryID:        "26", // Howto & Style
			MaxResults:        50,
			Timeout:           Duration(10 * time.Second),
			RequestsPerSecond: 10,
		},
		Source: SourceConfig{
			RecentUploads:    10,
			SearchWindowDays: 7,
			SearchResults:    20,
		},
		Collector: CollectorConfig{
			OutputDir:        "results",
			BatchSize:        100,
			MinViewCount:     1000,
			EnableValidation: true,
			MaxComments:      30,
			BatchPause:       Duration(5 * time.Second),
		},
		Writer: WriterConfig{Prefix: "youtube_viral_dataset"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("YOUTUBE_API_KEYS"); v != "" {
		keys := make([]string, 0)
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
		cfg.APIKeys = keys
	}
	if v := os.Getenv("OUTPUT_DIRECTORY"); v != "" {
		cfg.Collector.OutputDir = strings.TrimSpace(v)
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collector.BatchSize = n
		}
	}
	if v := os.Getenv("MIN_VIEW_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collector.MinViewCount = n
		}
	}
	if v := os.Getenv("ENABLE_DATA_VALIDATION"); v != "" {
		cfg.Collector.EnableValidation = strings.EqualFold(v, "true")
	}

	if cfg.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			cfg.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			cfg.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			cfg.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			cfg.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Trendflow.Name == "" {
		return fmt.Errorf("trendflow.name is required")
	}
	if cfg.Trendflow.Version == "" {
		return fmt.Errorf("trendflow.version is required")
	}
	if len(cfg.APIKeys) == 0 {
		return fmt.Errorf("at least one API key is required (set YOUTUBE_API_KEYS)")
	}
	if cfg.Quota.DailyBudget <= 0 {
		return fmt.Errorf("quota.daily_budget must be greater than 0")
	}
	if cfg.YouTube.BaseURL == "" {
		return fmt.Errorf("youtube.base_url is required")
	}
	if cfg.YouTube.MaxResults <= 0 || cfg.YouTube.MaxResults > 50 {
		return fmt.Errorf("youtube.max_results must be between 1 and 50")
	}
	if cfg.YouTube.RequestsPerSecond <= 0 {
		return fmt.Errorf("youtube.requests_per_second must be greater than 0")
	}
	if cfg.Source.RecentUploads <= 0 {
		return fmt.Errorf("source.recent_uploads must be greater than 0")
	}
	if cfg.Source.SearchWindowDays <= 0 {
		return fmt.Errorf("source.search_window_days must be greater than 0")
	}
	if cfg.Collector.OutputDir == "" {
		return fmt.Errorf("collector.output_dir is required")
	}
	if cfg.Collector.MinViewCount < 0 {
		return fmt.Errorf("collector.min_view_count must not be negative")
	}
	if cfg.Collector.MaxComments <= 0 {
		return fmt.Errorf("collector.max_comments must be greater than 0")
	}
	if cfg.Writer.Prefix == "" {
		return fmt.Errorf("writer.prefix is required")
	}
	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
	}
	return nil
}
