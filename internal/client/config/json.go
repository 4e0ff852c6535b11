package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/langcrowd/internal/flagx"
	"github.com/dmitrijs2005/langcrowd/internal/timex"
)

type JsonS3 struct {
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Missing keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	BaseURL             string         `json:"base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	RetryAttempts       int            `json:"retry_attempts"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CacheTTL            timex.Duration `json:"cache_ttl"`
	DatabasePath        string         `json:"database_path"`
	LogLevel            string         `json:"log_level"`
	ExportDir           string         `json:"export_dir"`
	S3                  JsonS3         `json:"s3"`
}

func set[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// parseJson overlays cfg with the file given by -c/-config. It panics on
// read or unmarshal errors.
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

	set(&cfg.BaseURL, jc.BaseURL)
	set(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	set(&cfg.RetryAttempts, jc.RetryAttempts)
	set(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval.Duration)
	set(&cfg.CacheTTL, jc.CacheTTL.Duration)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.ExportDir, jc.ExportDir)
	set(&cfg.S3.Bucket, jc.S3.Bucket)
	set(&cfg.S3.Prefix, jc.S3.Prefix)
	set(&cfg.S3.Region, jc.S3.Region)
	set(&cfg.S3.Endpoint, jc.S3.Endpoint)
	set(&cfg.S3.AccessKey, jc.S3.AccessKey)
	set(&cfg.S3.SecretKey, jc.S3.SecretKey)
}
