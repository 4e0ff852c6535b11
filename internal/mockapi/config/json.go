package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/langcrowd/internal/flagx"
	"github.com/dmitrijs2005/langcrowd/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files.
type JsonConfig struct {
	Address       string         `json:"address"`
	SecretKey     string         `json:"secret_key"`
	TokenValidity timex.Duration `json:"token_validity"`
	BcryptCost    int            `json:"bcrypt_cost"`
	LogLevel      string         `json:"log_level"`
}

// parseJson overlays cfg with the file given by -c/-config. Keys that are
// absent keep their previous value. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.Address != "" {
		cfg.Address = jc.Address
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.TokenValidity.Duration != 0 {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
	if jc.BcryptCost != 0 {
		cfg.BcryptCost = jc.BcryptCost
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
