package server

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/handlers"
	applog "foodgram/internal/log"
	"foodgram/internal/metrics"
	"foodgram/internal/sessions"
)

const loginLimiterTTL = 10 * time.Minute

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr     string
	Session  config.SessionConfig
	Database *gorm.DB

	// Media stores recipe images. MediaRoot, when set, is served at /media/.
	Media     handlers.Media
	MediaRoot string

	Cache   cache.Cache
	Metrics *metrics.Metrics
	Rules   config.RecipeRules

	AllowedOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a reverse proxy that sets those headers.
	TrustProxy      bool
	LoginRate       float64
	LoginBurst      int
	ShutdownTimeout time.Duration
}

// Server wraps an http.Server and the session manager backing auth tokens.
type Server struct {
	config     Config
	sessions   *scs.SessionManager
	httpServer *http.Server
	cancel     context.CancelFunc
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	applog.Debug(ctx, "initializing server",
		"addr", cfg.Addr,
		"tokenLifetime", cfg.Session.Lifetime.String(),
		"mediaRoot", cfg.MediaRoot,
	)

	if cfg.Session.Lifetime <= 0 {
		applog.Debug(ctx, "token lifetime not provided, using default")
		cfg.Session.Lifetime = 30 * 24 * time.Hour
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Rules == (config.RecipeRules{}) {
		cfg.Rules = config.DefaultRecipeRules()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	sessionManager := sessions.NewManager(cfg.Database, cfg.Session)

	opts := []handlers.Option{
		handlers.WithRecipeRules(cfg.Rules),
		handlers.WithMetrics(cfg.Metrics),
	}
	if cfg.Media != nil {
		opts = append(opts, handlers.WithMedia(cfg.Media))
	}
	if cfg.Cache != nil {
		opts = append(opts, handlers.WithCache(cfg.Cache))
	}
	handlers.Configure(sessionManager, cfg.Database, opts...)
	applog.Debug(ctx, "handler dependencies configured")

	limiterCtx, cancel := context.WithCancel(context.Background())
	limiter := newLoginLimiter(cfg.LoginRate, cfg.LoginBurst, loginLimiterTTL)
	limiter.startSweeper(limiterCtx)

	return &Server{
		config:   cfg,
		sessions: sessionManager,
		cancel:   cancel,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           newRouter(cfg, limiter),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Sessions exposes the token session manager.
func (s *Server) Sessions() *scs.SessionManager {
	return s.sessions
}
