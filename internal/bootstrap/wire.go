package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/homi/internal/application/auth"
	"github.com/baechuer/homi/internal/application/guard"
	"github.com/baechuer/homi/internal/application/journal"
	"github.com/baechuer/homi/internal/config"
	"github.com/baechuer/homi/internal/infrastructure/completion"
	"github.com/baechuer/homi/internal/infrastructure/db/postgres"
	"github.com/baechuer/homi/internal/infrastructure/email"
	"github.com/baechuer/homi/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/homi/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/homi/internal/infrastructure/redis"
	"github.com/baechuer/homi/internal/infrastructure/security"
	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/ratelimit"
	http_handlers "github.com/baechuer/homi/internal/transport/http/handlers"
	"github.com/baechuer/homi/internal/transport/http/middleware"
	"github.com/baechuer/homi/internal/transport/http/response"
	"github.com/baechuer/homi/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL string) (MailPublisher, error)

	// NewProvider overrides the completion provider built from config.
	NewProvider func(cfg *config.Config) journal.CompletionProvider

	NewRouter func(router.Deps) (http.Handler, error)
}

type MailPublisher interface {
	auth.Mailer
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	readiness := map[string]http_handlers.Pinger{}

	// 1) store
	var (
		users   auth.UserRepo
		entries journal.EntryRepo
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Logger.Warn().Msg("using in-memory store; data is lost on restart")
		users, entries = memory.NewUserRepo(), memory.NewEntryRepo()
	default:
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return fail(err)
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := deps.Migrate(ctx, db)
			cancel()
			if err != nil {
				return fail(err)
			}
		}

		users, entries = postgres.NewUserRepo(db), postgres.NewEntryRepo(db)
		readiness["postgres"] = config.DBPinger{DB: db}
	}

	// 2) rate limiter: redis when reachable, else process-local
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		rc := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(context.Background()); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory rate limiter")
			_ = rc.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = rc.Close() })
			limiter = redis.NewFixedWindowLimiter(rc)
			readiness["redis"] = rc
		}
	}
	if limiter == nil {
		ml := ratelimit.NewMemoryLimiter(time.Minute)
		cleanupFns = append(cleanupFns, func() { _ = ml.Close() })
		limiter = ml
	}

	// 3) mailer
	var mailer auth.Mailer
	switch cfg.Mailer {
	case config.MailerSMTP:
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.MailTimeout,
			Insecure: cfg.SMTPInsecure,
		}, logger.Logger)
	case config.MailerRabbitMQ:
		pub, err := deps.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.IsProd() {
				return fail(err)
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; logging mail instead")
			mailer = email.NewLogSender(logger.Logger)
		} else {
			cleanupFns = append(cleanupFns, func() { _ = pub.Close() })
			mailer = pub
		}
	default:
		mailer = email.NewLogSender(logger.Logger)
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt service")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)

	// 5) completion provider
	var provider journal.CompletionProvider
	if deps.NewProvider != nil {
		provider = deps.NewProvider(cfg)
	} else {
		provider = newProvider(cfg)
	}

	// 6) services
	authSvc := auth.NewService(users, hasher, tokens, mailer, auth.Config{
		SessionTTL:            cfg.SessionTTL,
		VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
		PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
		MailTimeout:           cfg.MailTimeout,
		VerifyEmailBaseURL:    cfg.VerifyEmailBaseURL,
		PasswordResetBaseURL:  cfg.PasswordResetBaseURL,
		AutoVerify:            cfg.AutoVerifyUsers,
		SendVerificationEmail: cfg.SendVerificationEmail,
	})

	authSvc = authSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	journalSvc := journal.NewService(entries, provider, limiter, journal.Config{
		FeedbackPolicy:  ratelimit.Policy{Name: "ai_feedback", Limit: cfg.RLFeedbackLimit, Window: cfg.RLFeedbackWindow},
		FeedbackTimeout: cfg.FeedbackTimeout,
		MaxTokens:       cfg.FeedbackMaxTokens,
		Temperature:     0.7,
	})

	// 7) handlers + middleware
	authMW := middleware.Auth(guard.New(tokens, users), response.WriteError)
	authRL := middleware.RateLimitByIP(
		limiter,
		ratelimit.Policy{Name: "auth", Limit: cfg.RLAuthLimit, Window: cfg.RLAuthWindow},
		response.WriteRateLimited,
	)

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:          http_handlers.NewHealthHandler(readiness),
		Auth:            http_handlers.NewAuthHandler(authSvc),
		Entries:         http_handlers.NewEntriesHandler(journalSvc),
		AuthMW:          authMW,
		AuthRateLimitMW: authRL,
		Metrics:         promhttp.Handler(),
		TrustProxy:      cfg.TrustProxy,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		GlobalPerMin:    cfg.RLGlobalPerMin,
		RequestTimeout:  cfg.RequestTimeout,
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// newProvider returns Disabled without an API key, otherwise the OpenAI-compatible
// client behind a circuit breaker.
func newProvider(cfg *config.Config) journal.CompletionProvider {
	if cfg.OpenAIAPIKey == "" {
		logger.Logger.Warn().Msg("OPENAI_API_KEY not set; entries get the default feedback")
		return completion.Disabled{}
	}
	return completion.NewBreaker(
		completion.NewOpenAIProvider(completion.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}),
		completion.BreakerConfig{
			MaxFailures:  cfg.BreakerMaxFailures,
			ResetTimeout: cfg.BreakerResetAfter,
		},
	)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis:   redis.New,
		NewPublisher: func(url string) (MailPublisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
