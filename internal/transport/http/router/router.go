package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/transport/http/middleware"
	"github.com/baechuer/homi/internal/transport/http/response"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)
	RequestReset(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type EntriesHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Auth    AuthHandler
	Entries EntriesHandler

	// AuthMW resolves the caller on protected routes.
	AuthMW func(http.Handler) http.Handler
	// AuthRateLimitMW applies the auth policy to the public credential routes.
	AuthRateLimitMW func(http.Handler) http.Handler

	// Metrics is served at /metrics when set.
	Metrics http.Handler

	TrustProxy     bool
	MaxBodyBytes   int64
	GlobalPerMin   int // per-IP ceiling across every route; 0 disables
	RequestTimeout time.Duration
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Entries == nil {
		return nil, fmt.Errorf("nil Entries handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AuthRateLimitMW == nil {
		return nil, fmt.Errorf("nil auth rate limit middleware")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	if deps.RequestTimeout > 0 {
		r.Use(chimw.Timeout(deps.RequestTimeout))
	}
	if deps.GlobalPerMin > 0 {
		r.Use(httprate.Limit(
			deps.GlobalPerMin,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				response.WriteError(w, r, domain.ErrRateLimited("global"))
			}),
		))
	}

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BodyLimit(deps.MaxBodyBytes, response.WriteError))

		// --- Account (public, auth policy) ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthRateLimitMW)
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
			r.Post("/resend-verification", deps.Auth.ResendVerification)
			r.Post("/request-reset", deps.Auth.RequestReset)
			r.Post("/reset-password", deps.Auth.ResetPassword)
		})
		r.Get("/verify-email", deps.Auth.VerifyEmail) // ?token=...

		// --- Protected ---
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW)
			r.Get("/me", deps.Auth.Me)
			r.Get("/entries", deps.Entries.List)
			r.Post("/entries", deps.Entries.Create)
		})
	})

	return r, nil
}
