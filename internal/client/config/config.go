package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the orgdrive CLI.
//
// Fields:
//   - ServerURL: base URL of the orgdrive HTTP API.
//   - AccessToken: bearer token sent with every request; empty means anonymous.
//   - Timeout: per-request deadline, uploads included.
//   - DevSecret / DevIssuer: when set, the "token" command can mint a local
//     HS256 identity token accepted by a server sharing the same secret.
type Config struct {
	ServerURL   string        `validate:"required,url"`
	AccessToken string
	Timeout     time.Duration `validate:"gt=0"`
	DevSecret   string
	DevIssuer   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.AccessToken = ""
	c.Timeout = 30 * time.Second
}

var validate = validator.New()

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
