// Package config provides configuration management for the journal library service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Deployment environments. Anything but production keeps crawlers out.
const (
	EnvironmentDevelopment = "development"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"
)

// Catalog sources.
const (
	CatalogSourceFile      = "file"
	CatalogSourceWordPress = "wordpress"
)

// Config holds all configuration for the journal library service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Site contains public site identity and crawler policy.
	Site SiteConfig `mapstructure:"site"`
	// WordPress contains content backend settings.
	WordPress WordPressConfig `mapstructure:"wordpress"`
	// Catalog contains the in-memory journal catalog settings.
	Catalog CatalogConfig `mapstructure:"catalog"`
	// Search contains search endpoint limits.
	Search SearchConfig `mapstructure:"search"`
	// Publish contains snapshot publishing settings.
	Publish PublishConfig `mapstructure:"publish"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// SiteConfig holds the public identity of the site.
type SiteConfig struct {
	// URL is the canonical public base URL, without trailing slash.
	URL string `mapstructure:"url"`
	// Name is the site name used as fallback publisher.
	Name string `mapstructure:"name"`
	// Description is the default page description.
	Description string `mapstructure:"description"`
	// FeedTitle is the RSS channel title.
	FeedTitle string `mapstructure:"feed_title"`
	// Environment is development, staging or production.
	Environment string `mapstructure:"environment"`
	// BlockDrafts adds /drafts/ and /preview/ to robots.txt.
	BlockDrafts bool `mapstructure:"block_drafts"`
	// BlockUserContent adds /user/ and /profile/ to robots.txt.
	BlockUserContent bool `mapstructure:"block_user_content"`
}

// WordPressConfig holds content backend configuration.
type WordPressConfig struct {
	// APIURL is the WordPress REST base (…/wp-json/wp/v2).
	APIURL string `mapstructure:"api_url"`
	// Username is the Basic auth user (loaded from environment only).
	Username string `mapstructure:"-"`
	// Password is the Basic auth application password (loaded from environment only).
	Password string `mapstructure:"-"`
	// Timeout is the timeout for backend calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst"`
	// MaxRetries is the number of retries on 429/5xx (0 disables retries).
	MaxRetries int `mapstructure:"max_retries"`
	// UserAgent is sent with every backend request.
	UserAgent string `mapstructure:"user_agent"`
	// FeedSize is the number of posts in the RSS feed.
	FeedSize int `mapstructure:"feed_size"`
	// SitemapSize is the number of posts listed in the sitemap.
	SitemapSize int `mapstructure:"sitemap_size"`
}

// CatalogConfig holds the searchable catalog configuration.
type CatalogConfig struct {
	// Source is "file" (YAML catalog) or "wordpress" (categories and posts).
	Source string `mapstructure:"source"`
	// Path is the YAML catalog path; empty uses the embedded catalog.
	Path string `mapstructure:"path"`
	// Watch reloads the file catalog when it changes.
	Watch bool `mapstructure:"watch"`
	// RefreshSchedule is a cron spec for periodic reloads; empty disables it.
	RefreshSchedule string `mapstructure:"refresh_schedule"`
	// MaxPages caps the number of post pages fetched per category.
	MaxPages int `mapstructure:"max_pages"`
}

// SearchConfig holds search endpoint limits.
type SearchConfig struct {
	// DefaultLimit is the page size when none is given.
	DefaultLimit int `mapstructure:"default_limit"`
	// MaxLimit is the largest accepted page size.
	MaxLimit int `mapstructure:"max_limit"`
}

// PublishConfig holds snapshot publishing configuration.
type PublishConfig struct {
	// Enabled turns on the publisher in the worker.
	Enabled bool `mapstructure:"enabled"`
	// Schedule is the cron spec for publish runs.
	Schedule string `mapstructure:"schedule"`
	// Bucket is the target S3 bucket.
	Bucket string `mapstructure:"bucket"`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix"`
	// Region is the AWS region.
	Region string `mapstructure:"region"`
	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint"`
	// PathStyle forces path-style addressing.
	PathStyle bool `mapstructure:"path_style"`
	// AccessKeyID is a static access key (loaded from environment only).
	AccessKeyID string `mapstructure:"-"`
	// SecretAccessKey is a static secret key (loaded from environment only).
	SecretAccessKey string `mapstructure:"-"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// IsProduction reports whether the site runs in production.
func (c *SiteConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvironmentProduction)
}

// Load loads configuration from a .env file, environment variables and config files.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("JOURNALLIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/journal-library")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")
	cfg.WordPress.APIURL = strings.TrimRight(cfg.WordPress.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv maps the variable names used by existing deployments.
// The prefixed name always wins.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("wordpress.api_url", "JOURNALLIB_WORDPRESS_API_URL", "WORDPRESS_API_URL")
	_ = v.BindEnv("site.url", "JOURNALLIB_SITE_URL", "NEXT_PUBLIC_SITE_URL")
	_ = v.BindEnv("site.name", "JOURNALLIB_SITE_NAME", "NEXT_PUBLIC_SITE_NAME")
	_ = v.BindEnv("site.block_drafts", "JOURNALLIB_SITE_BLOCK_DRAFTS", "BLOCK_DRAFTS")
	_ = v.BindEnv("site.block_user_content", "JOURNALLIB_SITE_BLOCK_USER_CONTENT", "BLOCK_USER_CONTENT")
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.WordPress.Username = firstEnv("JOURNALLIB_WORDPRESS_USERNAME", "WORDPRESS_USERNAME")
	cfg.WordPress.Password = firstEnv("JOURNALLIB_WORDPRESS_PASSWORD", "WORDPRESS_PASSWORD")

	cfg.Publish.AccessKeyID = os.Getenv("JOURNALLIB_PUBLISH_ACCESS_KEY_ID")
	cfg.Publish.SecretAccessKey = os.Getenv("JOURNALLIB_PUBLISH_SECRET_ACCESS_KEY")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "journal_library")

	// Site defaults
	v.SetDefault("site.url", "https://article.stmjournals.com")
	v.SetDefault("site.name", "Journal Library")
	v.SetDefault("site.description", "Peer-reviewed research articles and journals")
	v.SetDefault("site.feed_title", "STM Journals - Latest Research")
	v.SetDefault("site.environment", EnvironmentProduction)
	v.SetDefault("site.block_drafts", false)
	v.SetDefault("site.block_user_content", false)

	// WordPress defaults
	// Credentials are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("wordpress.api_url", "https://journals.stmjournals.com/wp-json/wp/v2")
	v.SetDefault("wordpress.timeout", "30s")
	v.SetDefault("wordpress.rate_limit", 10.0)
	v.SetDefault("wordpress.burst", 10)
	v.SetDefault("wordpress.max_retries", 0)
	v.SetDefault("wordpress.user_agent", "JournalLibrary/1.0")
	v.SetDefault("wordpress.feed_size", 50)
	v.SetDefault("wordpress.sitemap_size", 100)

	// Catalog defaults
	v.SetDefault("catalog.source", CatalogSourceFile)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("catalog.refresh_schedule", "")
	v.SetDefault("catalog.max_pages", 5)

	// Search defaults
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 100)

	// Publish defaults
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.schedule", "@hourly")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "us-east-1")
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.path_style", false)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate site
	if err := validateAbsoluteURL("site url", c.Site.URL); err != nil {
		return err
	}
	switch strings.ToLower(c.Site.Environment) {
	case EnvironmentDevelopment, EnvironmentStaging, EnvironmentProduction:
	default:
		return fmt.Errorf("invalid environment: %s", c.Site.Environment)
	}

	// Validate content backend
	if err := validateAbsoluteURL("wordpress api_url", c.WordPress.APIURL); err != nil {
		return err
	}
	if c.WordPress.RateLimit <= 0 {
		return fmt.Errorf("wordpress rate_limit must be positive")
	}
	if c.WordPress.MaxRetries < 0 {
		return fmt.Errorf("wordpress max_retries must not be negative")
	}
	if (c.WordPress.Username == "") != (c.WordPress.Password == "") {
		return fmt.Errorf("WORDPRESS_USERNAME and WORDPRESS_PASSWORD must be set together")
	}

	// Validate catalog
	switch c.Catalog.Source {
	case CatalogSourceFile, CatalogSourceWordPress:
	default:
		return fmt.Errorf("invalid catalog source: %s", c.Catalog.Source)
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return fmt.Errorf("catalog watch requires catalog path")
	}

	// Validate search limits
	if c.Search.MaxLimit <= 0 {
		return fmt.Errorf("search max_limit must be positive")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search default_limit (%d) must be between 1 and max_limit (%d)", c.Search.DefaultLimit, c.Search.MaxLimit)
	}

	// Validate publishing
	if c.Publish.Enabled {
		if c.Publish.Bucket == "" {
			return fmt.Errorf("publish bucket is required when publishing is enabled")
		}
		if c.Publish.Schedule == "" {
			return fmt.Errorf("publish schedule is required when publishing is enabled")
		}
	}
	if c.Publish.Endpoint != "" {
		if err := validateAbsoluteURL("publish endpoint", c.Publish.Endpoint); err != nil {
			return err
		}
	}

	return nil
}

func validateAbsoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q", name, raw)
	}
	return nil
}
