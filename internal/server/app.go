// Package server wires the orgdrive server together: database and
// migrations, object storage, services, the HTTP API and the gRPC health
// endpoint, and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/config"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/dmitrijs2005/orgdrive/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/orgdrive/internal/server/rest"
	"github.com/dmitrijs2005/orgdrive/internal/server/services"
	"github.com/dmitrijs2005/orgdrive/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/orgdrive/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer
	http    *rest.Server
	health  *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	app := &App{config: c, logger: logger, db: db, closers: []io.Closer{db}}

	store, err := app.objectStore(ctx, m)
	if err != nil {
		app.close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	secret := []byte(c.SecretKey)

	router, err := rest.NewRouter(rest.Deps{
		Files:   services.NewFileService(db, rm, store, logger, m),
		Uploads: services.NewUploadService(store, c.UploadsPerMinute, logger, m),
		Users:   services.NewUserService(db, rm, logger),
		ParseToken: func(token string) (auth.Identity, error) {
			return auth.Parse(token, secret, c.TokenIssuer)
		},
		Logger:         logger,
		Metrics:        m,
		Gatherer:       reg,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
		TrustedProxies: c.TrustedProxies,
	})
	if err != nil {
		app.close()
		return nil, err
	}

	app.http = rest.NewServer(c.EndpointAddrHTTP, router, logger)
	app.health = gs.NewHealthServer(c.EndpointAddrGRPC, db, c.HealthCheckInterval, logger)

	return app, nil
}

// objectStore builds the S3 store, fronted by the Redis URL cache when an
// address is configured.
func (app *App) objectStore(ctx context.Context, m *metrics.Metrics) (storage.ObjectStore, error) {
	c := app.config

	s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:              c.S3Region,
		AccessKey:           c.S3RootUser,
		SecretKey:           c.S3RootPassword,
		Bucket:              c.S3Bucket,
		BaseEndpoint:        c.S3BaseEndpoint,
		UploadURLValidity:   c.UploadURLValidity,
		DownloadURLValidity: c.DownloadURLValidity,
	}, app.logger, m)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	if c.RedisAddr == "" {
		return s3Store, nil
	}

	cache, err := storage.NewRedisCache(ctx, c.RedisAddr)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, cache)

	return storage.NewCachedStore(s3Store, cache, c.DownloadURLValidity/2, app.logger, m), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

// Run starts both servers and blocks until they stop. Either server
// failing stops the other.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for _, run := range []func(context.Context) error{app.http.Run, app.health.Run} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
