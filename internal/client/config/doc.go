// Package config loads runtime configuration for the orgdrive CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Example JSON:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "access_token": "eyJhbGciOi...",
//	  "timeout": "30s"
//	}
package config
