package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces the client's environment variables.
const EnvPrefix = "LANGCROWD_"

// parseEnv overlays cfg with LANGCROWD_* variables. Variables that are not
// set keep the values from earlier sources. It panics on malformed values.
func parseEnv(cfg *Config) {
	// .env is optional
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
