package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/orgdrive/internal/flagx"
	"github.com/dmitrijs2005/orgdrive/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration so
// both "15m" and integer nanoseconds are accepted. Absent keys leave the
// corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SecretKey           *string         `json:"secret_key"`
	TokenIssuer         *string         `json:"token_issuer"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	UploadURLValidity   *timex.Duration `json:"upload_url_validity"`
	DownloadURLValidity *timex.Duration `json:"download_url_validity"`
	RedisAddr           *string         `json:"redis_addr"`
	RateLimitRPS        *float64        `json:"rate_limit_rps"`
	RateLimitBurst      *int            `json:"rate_limit_burst"`
	UploadsPerMinute    *int            `json:"uploads_per_minute"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	TrustedProxies      []string        `json:"trusted_proxies"`
}

// parseJson loads the JSON file named by -c/-config into config. Nothing
// happens when no file is given. Unreadable or malformed files panic, the
// same way bad flags do.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.UploadURLValidity != nil {
		config.UploadURLValidity = c.UploadURLValidity.Duration
	}
	if c.DownloadURLValidity != nil {
		config.DownloadURLValidity = c.DownloadURLValidity.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	if c.RateLimitRPS != nil {
		config.RateLimitRPS = *c.RateLimitRPS
	}
	if c.RateLimitBurst != nil {
		config.RateLimitBurst = *c.RateLimitBurst
	}
	if c.UploadsPerMinute != nil {
		config.UploadsPerMinute = *c.UploadsPerMinute
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
