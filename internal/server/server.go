// Package server is the HTTP face of the goverify host: credential
// verification, operator endpoints for the failed-attempt counter, health
// and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goVerify/jwt"
	"github.com/MrEthical07/goVerify/middleware"
)

// Pipeline is the subset of *goVerify.Pipeline the handlers need.
type Pipeline interface {
	Verify(ctx context.Context, accountID, password, otp string) (bool, error)
	FailureState(ctx context.Context, accountID string) (int, bool, error)
	Unlock(ctx context.Context, accountID string) error
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config wires the router.
type Config struct {
	Pipeline       Pipeline
	Tokens         *jwt.Manager // nil disables the operator endpoints
	Metrics        http.Handler // nil disables /metrics
	Health         map[string]HealthCheck
	Log            zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter returns the goverify HTTP handler.
func NewRouter(cfg Config) http.Handler {
	h := &handlers{pipeline: cfg.Pipeline, log: cfg.Log}

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimid.Timeout(cfg.RequestTimeout))
		}
		r.Use(chimid.AllowContentType("application/json"))
		r.Use(chimid.SetHeader("Content-Type", "application/json"))

		r.Post("/verify", h.verify)

		if cfg.Tokens != nil {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperator(cfg.Tokens, unauthorized))
				r.Get("/accounts/{id}/failures", h.failures)
				r.Post("/accounts/{id}/unlock", h.unlock)
			})
		}
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
