// Package app assembles the campusride server from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/MrEthical07/campusride"
	"github.com/MrEthical07/campusride/catalogue"
	"github.com/MrEthical07/campusride/internal/httpapi"
	"github.com/MrEthical07/campusride/internal/logging"
	otelexport "github.com/MrEthical07/campusride/metrics/export/otel"
	"github.com/MrEthical07/campusride/metrics/export/prometheus"
	"github.com/MrEthical07/campusride/notify"
	"github.com/MrEthical07/campusride/userstore"
)

// App owns the engine and every backend it was built on.
type App struct {
	cfg     Config
	logger  *logging.SlogLogger
	engine  *campusride.Engine
	handler http.Handler
	closers []func() error
}

// New opens the configured backends and builds the engine and router.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg Config, logger *logging.SlogLogger) (a *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	a = &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	users, err := a.openUserStore(ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}

	b := campusride.New().
		WithConfig(cfg.Engine).
		WithUserStore(users).
		WithNotifier(notifier).
		WithLogger(logger)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		b = b.WithRedis(client)
	}

	if cfg.Catalogue != "" {
		cat, err := catalogue.Load(cfg.Catalogue)
		if err != nil {
			return nil, err
		}
		b = b.WithCatalogue(cat)
	}

	if cfg.Log.Audit {
		b = b.WithAuditSink(campusride.NewSlogSink(logger.Slog().With("component", "audit")))
	}

	engine, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	a.engine = engine
	a.closers = append(a.closers, func() error { engine.Close(); return nil })

	exporter, err := otelexport.NewOTelExporter(otel.GetMeterProvider().Meter("github.com/MrEthical07/campusride"), engine)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: %w", err)
	}
	a.closers = append(a.closers, exporter.Close)

	opts := httpapi.Options{
		Logger:       logger,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		TrustProxy:   cfg.HTTP.TrustProxy,
	}
	if cfg.HTTP.MetricsEndpoint {
		opts.Metrics = prometheus.NewPrometheusExporter(engine).Handler()
	}
	a.handler = httpapi.NewRouter(engine, opts)

	return a, nil
}

func (a *App) openUserStore(ctx context.Context) (userstore.Store, error) {
	switch a.cfg.Store.Driver {
	case StoreSQLite:
		db, err := userstore.OpenSQLite(ctx, a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	case StoreMemory:
		a.logger.Warn(ctx, "using in-memory credential store; accounts are lost on restart")
		return userstore.NewMemory(), nil
	default:
		return userstore.OpenJSONFile(a.cfg.Store.Path)
	}
}

func (a *App) notifier() (notify.Notifier, error) {
	if a.cfg.SMTP.Host == "" {
		return notify.NewLogNotifier(a.logger), nil
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:               a.cfg.SMTP.Host,
		Port:               a.cfg.SMTP.Port,
		Username:           a.cfg.SMTP.Username,
		Password:           a.cfg.SMTP.Password,
		From:               a.cfg.SMTP.From,
		Timeout:            a.cfg.SMTP.Timeout,
		InsecureSkipVerify: a.cfg.SMTP.InsecureSkipVerify,
	})
}

// Engine returns the built engine.
func (a *App) Engine() *campusride.Engine {
	return a.engine
}

// Handler returns the HTTP router.
func (a *App) Handler() http.Handler {
	return a.handler
}

// LogSecurityReport writes the startup posture and one warning per unsafe
// setting.
func (a *App) LogSecurityReport(ctx context.Context) {
	r := a.engine.SecurityReport()
	a.logger.Info(ctx, "security posture",
		"production_mode", r.ProductionMode,
		"session_ttl", r.SessionTTL,
		"secure_cookie", r.SecureCookie,
		"min_password_length", r.MinPasswordLength,
		"rate_limiting", r.RateLimitingActive,
		"login_throttle", r.LoginThrottleActive,
		"distributed_state", r.DistributedState,
		"dev_notifier", r.DevNotifierInUse,
	)
	for _, w := range r.Warnings {
		a.logger.Warn(ctx, "security warning", "detail", w)
	}
}

// Serve listens on the configured address until ctx is cancelled, then
// drains in-flight requests within ShutdownTimeout.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTP.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: a.cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.HTTP.ReadTimeout,
		WriteTimeout:      a.cfg.HTTP.WriteTimeout,
		IdleTimeout:       a.cfg.HTTP.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	a.logger.Info(shutdownCtx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run builds the app, serves until ctx is cancelled and closes it.
func Run(ctx context.Context, cfg Config, logger *logging.SlogLogger) error {
	a, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(context.WithoutCancel(ctx), "close backends", "error", err)
		}
	}()

	a.LogSecurityReport(ctx)
	return a.Serve(ctx)
}
