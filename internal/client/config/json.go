package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/orgdrive/internal/flagx"
	"github.com/dmitrijs2005/orgdrive/internal/timex"
)

// JsonConfig is used only for unmarshalling. Absent keys keep the
// defaults already in Config.
type JsonConfig struct {
	ServerURL   *string         `json:"server_url"`
	AccessToken *string         `json:"access_token"`
	Timeout     *timex.Duration `json:"timeout"`
	DevSecret   *string         `json:"dev_secret"`
	DevIssuer   *string         `json:"dev_issuer"`
}

// parseJson overlays cfg with the file named by -c/-config. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
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

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.AccessToken != nil {
		cfg.AccessToken = *jc.AccessToken
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
	if jc.DevSecret != nil {
		cfg.DevSecret = *jc.DevSecret
	}
	if jc.DevIssuer != nil {
		cfg.DevIssuer = *jc.DevIssuer
	}
}
