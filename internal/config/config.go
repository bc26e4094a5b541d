package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	MailerLog      = "log"
	MailerSMTP     = "smtp"
	MailerRabbitMQ = "rabbitmq"

	minJWTSecretLen = 32
	minBcryptCost   = 10
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
	TrustProxy       bool

	//Auth / Security
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	BcryptCost int

	// One-time token flows (email verify / password reset)
	FrontendURL           string
	VerifyEmailBaseURL    string
	PasswordResetBaseURL  string
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
	AutoVerifyUsers       bool
	SendVerificationEmail bool

	// Storage
	Store   string
	DBAddr  string
	DBDebug bool

	// Redis (optional: shared rate limit counters)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Mail
	Mailer       string
	MailTimeout  time.Duration
	RabbitURL    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPInsecure bool

	// Completion provider
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	FeedbackTimeout    time.Duration
	FeedbackMaxTokens  int
	BreakerMaxFailures int
	BreakerResetAfter  time.Duration

	// Rate limits
	RLAuthLimit      int
	RLAuthWindow     time.Duration
	RLFeedbackLimit  int
	RLFeedbackWindow time.Duration
	RLGlobalPerMin   int
}

// Load reads the environment, after preloading .env when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Env:       getEnv("ENV", "dev"),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		JWTIssuer: getEnv("JWT_ISSUER", "homi"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	if len(cfg.JWTSecret) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}

	cfg.FrontendURL = strings.TrimRight(os.Getenv("FRONTEND_URL"), "/")
	if cfg.FrontendURL == "" {
		return nil, fmt.Errorf("missing required env var: FRONTEND_URL")
	}
	if u, err := url.Parse(cfg.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("FRONTEND_URL must be an absolute URL: %q", cfg.FrontendURL)
	}
	// The service appends the token, so both links end in `token=`.
	cfg.VerifyEmailBaseURL = cfg.FrontendURL + "/verify-email?token="
	cfg.PasswordResetBaseURL = cfg.FrontendURL + "/reset-password?token="

	// optional with defaults
	cfg.SessionTTL = p.duration("SESSION_TOKEN_TTL", 7*24*time.Hour)
	cfg.VerifyEmailTokenTTL = p.duration("VERIFY_EMAIL_TOKEN_TTL", time.Hour)
	cfg.PasswordResetTokenTTL = p.duration("PASSWORD_RESET_TOKEN_TTL", time.Hour)
	cfg.BcryptCost = p.integer("BCRYPT_COST", 12)

	cfg.AutoVerifyUsers = p.boolean("AUTO_VERIFY_USERS", false)
	cfg.SendVerificationEmail = p.boolean("SEND_VERIFICATION_EMAIL", cfg.IsProd())

	// Storage
	cfg.DBAddr = os.Getenv("DB_ADDR")
	cfg.DBDebug = p.boolean("DB_DEBUG", false)
	cfg.Store = getEnv("STORE", StorePostgres)

	// Redis
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = p.integer("REDIS_DB", 0)

	// Mail
	cfg.Mailer = getEnv("MAILER", MailerLog)
	cfg.MailTimeout = p.duration("MAIL_TIMEOUT", 10*time.Second)
	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = p.integer("SMTP_PORT", 587)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "Homi <no-reply@homi.local>")
	cfg.SMTPInsecure = p.boolean("SMTP_INSECURE", false)

	// Completion provider
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.FeedbackTimeout = p.duration("FEEDBACK_TIMEOUT", 10*time.Second)
	cfg.FeedbackMaxTokens = p.integer("FEEDBACK_MAX_TOKENS", 300)
	cfg.BreakerMaxFailures = p.integer("FEEDBACK_BREAKER_FAILURES", 5)
	cfg.BreakerResetAfter = p.duration("FEEDBACK_BREAKER_RESET", 30*time.Second)

	// Rate limits
	cfg.RLAuthLimit = p.integer("RL_AUTH_LIMIT", 10)
	cfg.RLAuthWindow = p.duration("RL_AUTH_WINDOW", time.Minute)
	cfg.RLFeedbackLimit = p.integer("RL_FEEDBACK_LIMIT", 10)
	cfg.RLFeedbackWindow = p.duration("RL_FEEDBACK_WINDOW", time.Minute)
	cfg.RLGlobalPerMin = p.integer("RL_GLOBAL_PER_MIN", 0)

	//Timeout values are optional and have a default value if not
	cfg.HTTPReadTimeout = p.duration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = p.duration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	cfg.HTTPIdleTimeout = p.duration("HTTP_IDLE_TIMEOUT", time.Minute)
	cfg.RequestTimeout = p.duration("REQUEST_TIMEOUT", 25*time.Second)
	cfg.MaxBodyBytes = int64(p.integer("REQUEST_BODY_MAX_SIZE", 1<<20))
	cfg.TrustProxy = p.boolean("TRUST_PROXY", false)

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProd() bool { return c.Env == "prod" }

func (c *Config) validate() error {
	if c.AutoVerifyUsers && c.IsProd() {
		return fmt.Errorf("AUTO_VERIFY_USERS cannot be enabled when ENV=prod")
	}
	if c.BcryptCost < minBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d", minBcryptCost)
	}

	switch c.Store {
	case StorePostgres:
		if c.DBAddr == "" {
			return fmt.Errorf("missing required env var: DB_ADDR (or set STORE=memory)")
		}
	case StoreMemory:
		if c.IsProd() {
			return fmt.Errorf("STORE=memory is not allowed when ENV=prod")
		}
	default:
		return fmt.Errorf("unknown STORE %q (want postgres or memory)", c.Store)
	}

	switch c.Mailer {
	case MailerLog:
		if c.IsProd() {
			return fmt.Errorf("MAILER=log is not allowed when ENV=prod (use smtp or rabbitmq)")
		}
	case MailerSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("missing required env var: SMTP_HOST (MAILER=smtp)")
		}
	case MailerRabbitMQ:
		if c.RabbitURL == "" {
			return fmt.Errorf("missing required env var: RABBIT_URL (MAILER=rabbitmq)")
		}
	default:
		return fmt.Errorf("unknown MAILER %q (want log, smtp or rabbitmq)", c.Mailer)
	}

	if c.RLAuthLimit < 0 || c.RLFeedbackLimit < 0 || c.RLGlobalPerMin < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parser keeps the first parse error so Load reads top to bottom.
type parser struct {
	err error
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
		return def
	}
	if d <= 0 {
		p.err = fmt.Errorf("invalid duration for %s: %q: must be positive", key, v)
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" || p.err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
		return def
	}
	return b
}
