package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/db/mock"
	applog "foodgram/internal/log"
	"foodgram/internal/media"
	"foodgram/internal/server"
	"foodgram/internal/sessions"
)

const sessionCleanupInterval = time.Hour

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	openMedia           = media.Open
	openCache           = cache.Open
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}
	defer func() { _ = applog.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var database *gorm.DB
	if cfg.Database.UseMock || cfg.Database.URL == "" {
		applog.Info(ctx, "using in-memory mock database")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	images, err := openMedia(ctx, cfg.Media, cfg.Recipes.MaxImageSide)
	if err != nil {
		applog.Error(ctx, "failed to configure media storage", "backend", cfg.Media.Backend, "error", err)
		return 1
	}

	refCache, closeCache, err := openCache(ctx, cfg.Redis)
	if err != nil {
		applog.Error(ctx, "failed to connect to redis", "error", err)
		return 1
	}
	defer func() {
		if err := closeCache(); err != nil {
			applog.Error(ctx, "failed to close redis client", "error", err)
		}
	}()

	sessions.NewStore(database).StartCleanup(ctx, sessionCleanupInterval)

	srv, err := newServerFunc(server.Config{
		Addr:            cfg.Server.Addr,
		Session:         cfg.Auth.Session,
		Database:        database,
		Media:           images,
		MediaRoot:       images.LocalRoot(),
		Cache:           refCache,
		Rules:           cfg.Recipes,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		TrustProxy:      cfg.Server.TrustProxy,
		LoginRate:       cfg.Auth.LoginRate,
		LoginBurst:      cfg.Auth.LoginBurst,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	sigCh, stop := subscribeShutdownSig()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server exited with error", "error", err)
		return 1
	}
	applog.Info(ctx, "server stopped")
	return 0
}
