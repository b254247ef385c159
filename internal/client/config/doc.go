// Package config loads runtime configuration for the Lingua client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config or LINGUA_CONFIG.
//  3. Environment variables (LINGUA_*), read through cleanenv.
//  4. Command-line flags that were explicitly set, which override everything.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds. Keys that are absent leave the current value alone:
//
//	{
//	  "api_base_url": "https://api.lingua.example",
//	  "socket_url": "wss://api.lingua.example",
//	  "request_timeout": "30s",
//	  "cache_ttl": "5m",
//	  "breaker_threshold": 3,
//	  "breaker_cooldown": "30s",
//	  "state_poll_interval": "2s",
//	  "auto_refresh": false
//	}
//
// # Environment
//
// Every field carries an env tag; see Config for the names. A .env file in
// the working directory is loaded by the entry point before Load runs.
package config
