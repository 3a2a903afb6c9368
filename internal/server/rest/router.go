package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
	"github.com/dmitrijs2005/orgdrive/internal/server/services"
	"github.com/dmitrijs2005/orgdrive/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type FileOperations interface {
	CreateFile(ctx context.Context, id auth.Identity, in services.CreateFileInput) (*models.File, error)
	GetFiles(ctx context.Context, id auth.Identity, in services.GetFilesInput) ([]*models.File, error)
	GetFilesWithURLs(ctx context.Context, id auth.Identity, orgID string) ([]*models.FileWithURL, error)
	DeleteFile(ctx context.Context, id auth.Identity, fileID string) error
	ToggleFavorite(ctx context.Context, id auth.Identity, fileID string) (bool, error)
}

type UploadOperations interface {
	GenerateUploadURL(ctx context.Context, id auth.Identity) (*storage.UploadTicket, error)
}

type UserSync interface {
	EnsureUser(ctx context.Context, id auth.Identity) (*models.User, error)
}

// TokenParser validates a bearer token.
type TokenParser func(token string) (auth.Identity, error)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Files      FileOperations
	Uploads    UploadOperations
	Users      UserSync
	ParseToken TokenParser
	Logger     logging.Logger
	Metrics    *metrics.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer       prometheus.Gatherer
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For; with none, the client IP is
	// always the peer address.
	TrustedProxies []string
}

type handlers struct {
	files      FileOperations
	uploads    UploadOperations
	users      UserSync
	parseToken TokenParser
	logger     logging.Logger
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(d Deps) (*gin.Engine, error) {
	logger := d.Logger.With("module", "rest")

	h := &handlers{
		files:      d.Files,
		uploads:    d.Uploads,
		users:      d.Users,
		parseToken: d.ParseToken,
		logger:     logger,
	}

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), requestLogger(logger), instrument(d.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	api.Use(rateLimit(newIPLimiter(d.RateLimitRPS, d.RateLimitBurst), d.Metrics), h.authenticate)
	{
		api.POST("/uploads", h.generateUploadURL)
		api.POST("/files", h.createFile)
		api.DELETE("/files/:fileId", h.deleteFile)
		api.POST("/files/:fileId/favorite", h.toggleFavorite)
		api.GET("/orgs/:orgId/files", h.getFiles)
		api.GET("/orgs/:orgId/files/urls", h.getFilesWithURLs)
	}

	return r, nil
}
