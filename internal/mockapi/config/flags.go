package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/flagx"
)

// parseFlags overlays command-line flags on cfg.
//
//	-a string   bind address (e.g. ":8000")
//	-s string   token HMAC secret
//	-t int      token validity, minutes
//	-k int      bcrypt cost
//	-l string   log level
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("mockapi", flag.ContinueOnError)

	fs.StringVar(&cfg.Address, "a", cfg.Address, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	validity := fs.Int("t", int(cfg.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.IntVar(&cfg.BcryptCost, "k", cfg.BcryptCost, "bcrypt cost")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.TokenValidity = time.Duration(*validity) * time.Minute
}
