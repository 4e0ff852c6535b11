// Package config handles configuration for the stub API server, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

import "time"

// Config holds runtime settings for the stub API.
//
// Fields:
//   - Address: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing tokens (HS256). Do not use the default outside development.
//   - TokenValidity: lifetime of issued tokens.
//   - BcryptCost: cost used for seeded and new password hashes.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Address       string        `env:"ADDRESS"`
	SecretKey     string        `env:"SECRET_KEY"`
	TokenValidity time.Duration `env:"TOKEN_VALIDITY"`
	BcryptCost    int           `env:"BCRYPT_COST"`
	LogLevel      string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Address = ":8000"
	c.SecretKey = "secretKey"
	c.TokenValidity = 24 * time.Hour
	c.BcryptCost = 10
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then an optional JSON file, then
// MOCKAPI_* environment variables and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
