// Package config loads runtime configuration for the mindmap shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config (see parseJson).
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   database DSN (file path for sqlite, URL for pgx)
//	-driver     database driver: sqlite | pgx
//	-s int      autosave quiet period (seconds)
//	-o int      password-reset code lifetime (minutes)
//	-l string   log backend: slog | zap
//	-v string   log level: debug | info | warn | error
//
// # JSON schema
//
// Durations use timex.Duration, so "2s" and integer nanoseconds both work:
//
//	{
//	  "database_driver": "sqlite",
//	  "database_dsn": "mindmap.db",
//	  "autosave_delay": "2s",
//	  "otp_lifetime": "10m",
//	  "smtp": {"host": "smtp.example.com", "port": "587", "from": "noreply@example.com"},
//	  "genai": {"endpoint": "https://generativelanguage.googleapis.com", "model": "gemini-2.0-flash", "api_key": "..."},
//	  "s3": {"bucket": "mindmaps", "region": "us-east-1"},
//	  "session": {"secret": "...", "ttl": "168h"}
//	}
//
// Empty JSON values leave the earlier value in place.
package config
