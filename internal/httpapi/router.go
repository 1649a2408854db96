package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/campusride"
	"github.com/MrEthical07/campusride/internal/logging"
	"github.com/MrEthical07/campusride/middleware"
)

const defaultMaxBodyBytes = 16 << 10

// Options tunes the router.
type Options struct {
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics      http.Handler
	Logger       logging.Logger
	MaxBodyBytes int64
	// TrustProxy makes X-Forwarded-For and X-Real-IP override the peer
	// address.
	TrustProxy bool
}

type handler struct {
	engine       *campusride.Engine
	logger       logging.Logger
	cookieName   string
	secureCookie bool
	maxBodyBytes int64
}

// NewRouter builds the chi router for engine.
func NewRouter(engine *campusride.Engine, opts Options) http.Handler {
	cfg := engine.Config()
	h := &handler{
		engine:       engine,
		logger:       opts.Logger,
		cookieName:   cfg.Session.CookieName,
		secureCookie: cfg.Session.SecureCookie,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestContext)
	r.Use(accessLog(h.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Post("/login", h.login)
	r.Post("/logout", h.logout)

	r.Route("/api", func(api chi.Router) {
		api.Post("/send-verification", h.sendVerification)
		api.Post("/verify-register", h.verifyRegister)
		api.Post("/forgot-password", h.forgotPassword)
		api.Post("/reset-password", h.resetPassword)

		api.With(middleware.LoadSession(engine, h.cookieName)).Get("/user", h.currentUser)

		api.Group(func(auth chi.Router) {
			auth.Use(middleware.RequireSession(engine, h.cookieName))
			auth.Post("/send-delete-verification", h.sendDeleteVerification)
			auth.Post("/verify-delete", h.verifyDelete)
			auth.Post("/language", h.changeLanguage)
			auth.Get("/routes", h.routes)
			auth.Get("/directions/{id}", h.directions)
		})
	})

	return r
}

func accessLog(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if status >= http.StatusInternalServerError {
				logger.Warn(r.Context(), "http request", args...)
				return
			}
			logger.Debug(r.Context(), "http request", args...)
		})
	}
}
