package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/client/api"
	"github.com/dmitrijs2005/orgdrive/internal/client/config"
	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

// filesAPI is the part of api.Client the commands use.
type filesAPI interface {
	Authenticated() bool
	SetToken(token string)
	GenerateUploadURL(ctx context.Context) (*api.UploadTicket, error)
	Upload(ctx context.Context, uploadURL string, data []byte) error
	CreateFile(ctx context.Context, in api.CreateFileRequest) (*models.File, error)
	GetFiles(ctx context.Context, orgID, query string, favorites bool) ([]*models.File, error)
	GetFilesWithURLs(ctx context.Context, orgID string) ([]*models.FileWithURL, error)
	DeleteFile(ctx context.Context, fileID string) error
	ToggleFavorite(ctx context.Context, fileID string) (bool, error)
}

type App struct {
	config *config.Config
	api    filesAPI
}

func NewApp(c *config.Config) *App {
	return &App{config: c, api: api.New(c.ServerURL, c.AccessToken, c.Timeout)}
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn("orgdrive CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isAuthenticated() bool {
	return a.api.Authenticated()
}

func (a *App) status() string {
	if a.isAuthenticated() {
		return "[authenticated]"
	}
	return "[anonymous]"
}

// withTimeout bounds one command by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.Timeout)
}

// report prints err in user terms and returns it unchanged.
func report(err error) error {
	switch {
	case api.IsUnavailable(err):
		printlnFn("Server unavailable:", err)
	case errors.Is(err, common.ErrAuthenticationRequired):
		printlnFn("Not authenticated. Start with -t <token> or use 'token'.")
	case errors.Is(err, common.ErrAuthorizationDenied):
		printlnFn("Access denied.")
	default:
		printlnFn("Error:", err)
	}
	return err
}

func usage(text string) error {
	printlnFn("Usage:", text)
	return common.ErrValidation
}

func printFile(f *models.File) {
	printlnFn(fmt.Sprintf("%s  %-6s  %s  %s", f.ID, f.Type, f.CreatedAt.Local().Format(time.DateTime), f.Name))
}
