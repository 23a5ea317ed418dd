// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper. Values come from
// defaults, an optional YAML file, and LEADCRAWL_* environment variables; the
// core packages only ever see this object, never the environment directly.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Profiles  ProfilesConfig  `mapstructure:"profiles"`
	Store     StoreConfig     `mapstructure:"store"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig governs worker-pool behavior shared by both stages.
type CrawlerConfig struct {
	Concurrency int      `mapstructure:"concurrency"`
	DelayMs     int      `mapstructure:"delay_ms"`
	RatePerHost float64  `mapstructure:"rate_per_host"`
	UserAgents  []string `mapstructure:"user_agents"`
}

// FetchConfig configures HTTP fetch and retry behavior.
type FetchConfig struct {
	TimeoutSeconds   int  `mapstructure:"timeout_seconds"`
	MaxRetries       int  `mapstructure:"max_retries"`
	BackoffInitialMs int  `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int  `mapstructure:"backoff_max_ms"`
	UseCacheFallback bool `mapstructure:"use_cache_fallback"`
}

// HeadlessConfig configures the browser-rendering fallback.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	MinHTMLBytes  int  `mapstructure:"min_html_bytes"`
}

// DirectoryConfig controls the directory crawl stage.
type DirectoryConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	MapPath    string `mapstructure:"map_path"`
	CursorPath string `mapstructure:"cursor_path"`
	MaxPages   int    `mapstructure:"max_pages_per_partition"`
}

// ProfilesConfig controls the profile resolve/extract stage.
type ProfilesConfig struct {
	MapPath    string `mapstructure:"map_path"`
	NamesFile  string `mapstructure:"names_file"`
	OutputPath string `mapstructure:"output_path"`
}

// StoreConfig selects the entity map persistence backend.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	DSN        string `mapstructure:"dsn"`
	Table      string `mapstructure:"table"`
	MaxConns   int32  `mapstructure:"max_conns"`
}

// ArchiveConfig controls raw-page snapshot archiving.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig configures the optional record-publishing sink.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// MetricsConfig exposes the Prometheus endpoint for long crawls.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("crawler.concurrency", 2)
	v.SetDefault("crawler.delay_ms", 1500)
	v.SetDefault("crawler.rate_per_host", 1.0)
	v.SetDefault("crawler.user_agents", []string{
		"Mozilla/5.0 (Linux; Android 11; Redmi Note 8 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	})
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("fetch.backoff_initial_ms", 250)
	v.SetDefault("fetch.backoff_max_ms", 5000)
	v.SetDefault("fetch.use_cache_fallback", false)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.min_html_bytes", 2048)
	v.SetDefault("directory.base_url", "https://www.linkedin.com/directory/companies")
	v.SetDefault("directory.map_path", "company_map.json")
	v.SetDefault("directory.cursor_path", "directory_cursors.json")
	v.SetDefault("directory.max_pages_per_partition", 0)
	v.SetDefault("profiles.map_path", "company_map.json")
	v.SetDefault("profiles.output_path", "profiles.json")
	v.SetDefault("store.backend", "jsonfile")
	v.SetDefault("store.table", "entities")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.backend", "local")
	v.SetDefault("archive.dir", "archive")
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.DelayMs < 0 {
		return fmt.Errorf("crawler.delay_ms must be >= 0")
	}
	if len(c.Crawler.UserAgents) == 0 {
		return fmt.Errorf("crawler.user_agents must include at least one agent")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Directory.BaseURL == "" {
		return fmt.Errorf("directory.base_url must be set")
	}
	switch c.Store.Backend {
	case "jsonfile", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.backend must be one of jsonfile, sqlite, postgres")
	}
	if c.Store.Backend == "sqlite" && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path must be set for the sqlite backend")
	}
	if c.Store.Backend == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must be set for the postgres backend")
	}
	if c.Archive.Enabled {
		switch c.Archive.Backend {
		case "local":
			if c.Archive.Dir == "" {
				return fmt.Errorf("archive.dir must be set for the local backend")
			}
		case "gcs":
			if c.Archive.GCSBucket == "" {
				return fmt.Errorf("archive.gcs_bucket must be set for the gcs backend")
			}
		default:
			return fmt.Errorf("archive.backend must be local or gcs")
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RequestDelay converts the per-request delay into a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.Crawler.DelayMs) * time.Millisecond
}
