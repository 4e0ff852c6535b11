package config

import (
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
)

// S3 configures report uploads. Uploads are disabled while Bucket is empty.
type S3 struct {
	Bucket    string `env:"BUCKET"`
	Prefix    string `env:"PREFIX"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
}

// Config holds runtime settings for the langcrowd terminal client.
type Config struct {
	BaseURL             string        `env:"API_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	RetryAttempts       int           `env:"RETRY_ATTEMPTS"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	CacheTTL            time.Duration `env:"CACHE_TTL"`
	DatabasePath        string        `env:"DB_PATH"`
	LogLevel            string        `env:"LOG_LEVEL"`
	ExportDir           string        `env:"EXPORT_DIR"`
	S3                  S3            `envPrefix:"S3_"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = client.DefaultBaseURL
	c.RequestTimeout = client.DefaultTimeout
	c.RetryAttempts = client.DefaultRetryAttempts
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheTTL = 30 * time.Second
	c.DatabasePath = "langcrowd.db"
	c.LogLevel = "warn"
	c.ExportDir = "reports"
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
