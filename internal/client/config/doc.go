// Package config loads runtime configuration for the SecretKey CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. The SECRETKEY_API_URL environment variable for the server URL.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the SecretKey API
//	-p int      records per page
//	-d string   path of the local SQLite database
//	-t int      request timeout (seconds)
//	-e string   directory exports are saved to
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so "15s" and integer nanoseconds both work.
// The S3 export target can only be set here:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "page_size": 9,
//	  "database_path": "secretkey.db",
//	  "request_timeout": "15s",
//	  "export_dir": ".",
//	  "log_level": "warn",
//	  "s3": {
//	    "bucket": "exports",
//	    "region": "us-east-1",
//	    "base_endpoint": "http://127.0.0.1:9000",
//	    "access_key": "minioadmin",
//	    "secret_key": "minioadmin",
//	    "prefix": "secretkey"
//	  }
//	}
package config
