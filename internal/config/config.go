package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Resolver ResolverConfig `yaml:"resolver"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Stats    StatsConfig    `yaml:"stats"`
	Server   ServerConfig   `yaml:"server"`
	Worker   WorkerConfig   `yaml:"worker"`
}

// TelegramConfig holds bot API configuration.
type TelegramConfig struct {
	Token           string  `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	DeveloperChatID int64   `yaml:"developer_chat_id" envconfig:"DEVELOPER_CHAT_ID"`
	Private         bool    `yaml:"private" envconfig:"BOT_PRIVATE" default:"false"`
	AllowedChatIDs  []int64 `yaml:"allowed_chat_ids" envconfig:"BOT_ALLOWED_CHAT_IDS"`
	UpdateTimeout   int     `yaml:"update_timeout" envconfig:"BOT_UPDATE_TIMEOUT" default:"30"`
}

// ScraperConfig holds scraping API configuration.
type ScraperConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"SCRAPER_BASE_URL" default:"https://api.vxtwitter.com"`
	Timeout time.Duration `yaml:"timeout" envconfig:"SCRAPER_TIMEOUT" default:"30s"`
}

// ResolverConfig holds short-link resolution configuration.
type ResolverConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"RESOLVER_TIMEOUT" default:"10s"`
}

// DeliveryConfig holds media delivery configuration.
type DeliveryConfig struct {
	DownloadLimit int64         `yaml:"download_limit" envconfig:"DELIVERY_DOWNLOAD_LIMIT" default:"20971520"` // 20 MiB
	UploadLimit   int64         `yaml:"upload_limit" envconfig:"DELIVERY_UPLOAD_LIMIT" default:"52428800"`    // 50 MiB
	TempDir       string        `yaml:"temp_dir" envconfig:"DELIVERY_TEMP_DIR"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" envconfig:"DELIVERY_PROBE_TIMEOUT" default:"10s"`
	UserAgent     string        `yaml:"user_agent" envconfig:"DELIVERY_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// StatsConfig holds counter persistence configuration.
type StatsConfig struct {
	DatabasePath string `yaml:"database_path" envconfig:"STATS_DB_PATH" default:"data/xcourier.db"`
	ActivitySize int    `yaml:"activity_size" envconfig:"STATS_ACTIVITY_SIZE" default:"256"`
}

// ServerConfig holds ops HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9848"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"1m"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"4"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"1s"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Telegram.DeveloperChatID == 0 {
		return fmt.Errorf("DEVELOPER_CHAT_ID is required")
	}
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.Delivery.DownloadLimit <= 0 || c.Delivery.UploadLimit <= 0 {
		return fmt.Errorf("delivery limits must be positive")
	}
	if c.Delivery.DownloadLimit > c.Delivery.UploadLimit {
		return fmt.Errorf("DELIVERY_DOWNLOAD_LIMIT cannot exceed DELIVERY_UPLOAD_LIMIT")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
