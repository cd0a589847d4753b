package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	ShopAPI  ShopAPIConfig  `yaml:"shop_api"`
	AdsAPI   AdsAPIConfig   `yaml:"ads_api"`
	Shops    []ShopAccount  `yaml:"shops"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the Postgres connection settings for the
// credential store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ShopAPIConfig holds TikTok Shop (commerce) API configuration.
// AppKey/AppSecret are process-wide secrets shared by every shop on
// the same developer app.
type ShopAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	AuthBaseURL    string `yaml:"auth_base_url"`
	Version        string `yaml:"version"`
	AppKey         string `yaml:"app_key"`
	AppSecret      string `yaml:"app_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ShopAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AdsAPIConfig holds TikTok Business (Ads) API configuration.
type AdsAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Version        string `yaml:"version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// PageDelayMillis paces successive page requests to the integrated
	// report endpoint, which rate-limits far more aggressively than the
	// GMV-Max endpoints.
	PageDelayMillis int `yaml:"page_delay_millis"`
}

// Timeout returns the configured timeout as a duration
func (c AdsAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PageDelay returns the inter-page pacing delay as a duration
func (c AdsAPIConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMillis) * time.Millisecond
}

// ShopAccount ties a shop number to its store and advertiser identities.
// The Ads access token is read from the named environment variable at
// request time; Shop tokens live in the credential store.
type ShopAccount struct {
	Number       int    `yaml:"number"`
	Name         string `yaml:"name"`
	ShopID       string `yaml:"shop_id"`
	AdvertiserID string `yaml:"advertiser_id"`
	AdsTokenEnv  string `yaml:"ads_token_env"`
	HasGMVMax    bool   `yaml:"has_gmv_max"`
}

// AdsAccessToken resolves the Ads API access token for this account.
func (s ShopAccount) AdsAccessToken() string {
	if s.AdsTokenEnv == "" {
		return ""
	}
	return CleanEnv(os.Getenv(s.AdsTokenEnv))
}

// FindShop returns the shop account with the given number.
func (c *Config) FindShop(number int) (ShopAccount, bool) {
	for _, s := range c.Shops {
		if s.Number == number {
			return s, true
		}
	}
	return ShopAccount{}, false
}

// CleanEnv strips whitespace and surrounding quotes from an environment
// value. Deployment tooling occasionally writes quoted values into the
// task definition and the upstream API rejects them verbatim.
func CleanEnv(val string) string {
	val = strings.TrimSpace(val)
	val = strings.Trim(val, `"'`)
	return val
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.ShopAPI.BaseURL == "" {
		cfg.ShopAPI.BaseURL = "https://open-api.tiktokglobalshop.com"
	}
	if cfg.ShopAPI.AuthBaseURL == "" {
		cfg.ShopAPI.AuthBaseURL = "https://auth.tiktok-shops.com"
	}
	if cfg.ShopAPI.Version == "" {
		cfg.ShopAPI.Version = "202309"
	}
	if cfg.ShopAPI.TimeoutSeconds == 0 {
		cfg.ShopAPI.TimeoutSeconds = 60
	}
	if cfg.AdsAPI.BaseURL == "" {
		cfg.AdsAPI.BaseURL = "https://business-api.tiktok.com"
	}
	if cfg.AdsAPI.Version == "" {
		cfg.AdsAPI.Version = "v1.3"
	}
	if cfg.AdsAPI.TimeoutSeconds == 0 {
		cfg.AdsAPI.TimeoutSeconds = 60
	}
	if cfg.AdsAPI.PageDelayMillis == 0 {
		cfg.AdsAPI.PageDelayMillis = 500
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if appKey := os.Getenv("TIKTOK_SHOP_APP_KEY"); appKey != "" {
		cfg.ShopAPI.AppKey = CleanEnv(appKey)
	}
	if appSecret := os.Getenv("TIKTOK_SHOP_APP_SECRET"); appSecret != "" {
		cfg.ShopAPI.AppSecret = CleanEnv(appSecret)
	}
	if baseURL := os.Getenv("TIKTOK_SHOP_BASE_URL"); baseURL != "" {
		cfg.ShopAPI.BaseURL = baseURL
	}
	if authURL := os.Getenv("TIKTOK_SHOP_AUTH_BASE_URL"); authURL != "" {
		cfg.ShopAPI.AuthBaseURL = authURL
	}
	if baseURL := os.Getenv("TIKTOK_ADS_BASE_URL"); baseURL != "" {
		cfg.AdsAPI.BaseURL = baseURL
	}

	return cfg, nil
}

// Validate checks the preconditions that every request path depends on.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is not configured (set database.url or DATABASE_URL)")
	}
	if c.ShopAPI.AppKey == "" || c.ShopAPI.AppSecret == "" {
		return fmt.Errorf("missing TIKTOK_SHOP_APP_KEY or TIKTOK_SHOP_APP_SECRET")
	}
	if len(c.Shops) == 0 {
		return fmt.Errorf("no shops configured")
	}
	return nil
}
