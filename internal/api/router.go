package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"pointsbot/internal/auth"
	"pointsbot/internal/config"
	"pointsbot/internal/db"
	"pointsbot/internal/rewards"
)

type Server struct {
	router *chi.Mux
	config *config.Config
}

func NewServer(
	cfg *config.Config,
	database *db.DB,
	rewardsService *rewards.Service,
) (*Server, error) {
	ipResolver, err := NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AdminTokenTTL)

	adsHandler := NewAdsHandler(rewardsService, ipResolver)
	keysHandler := NewKeysHandler(rewardsService)
	adminHandler := NewAdminHandler(rewardsService, jwtService, cfg.Auth.AdminSecret)
	healthHandler := NewHealthHandler(database)

	adminAuth := NewAdminAuthMiddleware(jwtService)

	r := chi.NewRouter()
	// No blanket RealIP middleware: forwarding headers feed the collusion
	// signal, so only ClientIPResolver's trusted-proxy path may honor them.
	r.Use(slogRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(maxBodySizeMiddleware(1 << 20)) // 1 MB

		// The verify callback is the abuse surface; keep it throttled
		// per client IP.
		r.With(rateLimitByIP(10, time.Minute)).Get("/ads/verify", adsHandler.Verify)

		r.Get("/keys", keysHandler.GetLinks)

		r.With(rateLimitByIP(5, time.Minute)).Post("/auth/token", adminHandler.IssueToken)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth.RequireAdmin)
			r.Post("/keys/rotate", adminHandler.RotateKeys)
			r.Put("/keys/link", adminHandler.SetKeyLink)
			r.Get("/keys/readiness", adminHandler.KeysReadiness)
			r.Post("/tokens", adminHandler.IssueAdToken)
		})
	})

	return &Server{
		router: r,
		config: cfg,
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func rateLimitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, "Too many requests, please try again later")
		}),
	)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func maxBodySizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}
