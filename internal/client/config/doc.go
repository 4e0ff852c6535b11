// Package config loads runtime configuration for the langcrowd client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables prefixed with LANGCROWD_, after loading a .env
//     file from the working directory when one exists.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-i int      online status check interval (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//	-e string   directory for exported reports
//	-b string   S3 bucket for exported reports
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8000/api/v1",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "database_path": "langcrowd.db",
//	  "s3": {"bucket": "reports", "endpoint": "http://127.0.0.1:9000"}
//	}
package config
