package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/flagx"
)

var knownFlags = []string{"-a", "-m", "-d", "-s", "-i", "-u", "-p", "-b", "-g", "-e", "-t", "-r", "-k", "-l", "-x"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   identity token HMAC secret
//	-i string   expected identity token issuer
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      upload URL validity, minutes
//	-r int      download URL validity, minutes
//	-k string   Redis address for the URL cache
//	-l string   log level
//	-x string   comma-separated trusted proxy IPs/CIDRs
//
// Durations are given as whole minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "m", config.EndpointAddrGRPC, "address and port to run gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "identity token secret key")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "identity token issuer")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	uploadValidity := fs.Int("t", int(config.UploadURLValidity.Minutes()), "upload URL validity (in minutes)")
	downloadValidity := fs.Int("r", int(config.DownloadURLValidity.Minutes()), "download URL validity (in minutes)")
	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address for URL cache")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	proxies := fs.String("x", strings.Join(config.TrustedProxies, ","), "trusted proxies (comma-separated)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UploadURLValidity = time.Duration(*uploadValidity) * time.Minute
	config.DownloadURLValidity = time.Duration(*downloadValidity) * time.Minute
	config.TrustedProxies = splitList(*proxies)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
