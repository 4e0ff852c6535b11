package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/flagx"
)

// parseFlags overlays command-line flags on cfg:
//
//	-a string   base URL of the REST API
//	-i int      online check interval, seconds
//	-d string   local database path
//	-l string   log level
//	-e string   directory for exported reports
//	-b string   S3 bucket for exported reports
//
// Flags read by other loaders, such as -c, are skipped.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("langcrowd", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the REST API")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "directory for exported reports")
	fs.StringVar(&cfg.S3.Bucket, "b", cfg.S3.Bucket, "S3 bucket for exported reports")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
