package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
)

const devTokenValidity = 24 * time.Hour

var errNoDevSecret = errors.New("no development secret configured")

// Token mints an identity token with the configured development secret and
// uses it for the rest of the session. It only works against a server that
// shares the secret, which makes it a local development aid.
func (a *App) Token(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("token <subject> [org,...]")
	}
	if a.config.DevSecret == "" {
		printlnFn("Start the client with -s <secret> to mint tokens.")
		return errNoDevSecret
	}

	var orgs []string
	if len(args) == 2 {
		for _, o := range strings.Split(args[1], ",") {
			if o = strings.TrimSpace(o); o != "" {
				orgs = append(orgs, o)
			}
		}
	}

	token, err := auth.GenerateToken(a.config.DevIssuer, args[0], orgs, []byte(a.config.DevSecret), devTokenValidity)
	if err != nil {
		return report(err)
	}

	a.api.SetToken(token)
	printlnFn("Token set for", args[0])
	return nil
}
