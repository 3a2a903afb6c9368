package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the orgdrive API
//	-t string   bearer access token
//	-i int      request timeout in seconds
//	-s string   secret for locally minted development tokens
//	-n string   issuer for locally minted development tokens
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-i", "-s", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "bearer access token")
	timeout := fs.Int("i", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DevSecret, "s", cfg.DevSecret, "development token secret")
	fs.StringVar(&cfg.DevIssuer, "n", cfg.DevIssuer, "development token issuer")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
}
