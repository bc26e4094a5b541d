package auth

import (
	"context"
	"time"

	"github.com/baechuer/homi/internal/domain"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenService
	mailer Mailer

	audit func(action string, fields map[string]string)
	now   func() time.Time

	sessionTTL       time.Duration
	verifyEmailTTL   time.Duration
	passwordResetTTL time.Duration
	mailTimeout      time.Duration

	// URLs used to build links sent by email
	verifyEmailBaseURL   string // e.g. https://frontend/verify-email?token=
	passwordResetBaseURL string // e.g. https://frontend/reset-password?token=

	autoVerify     bool
	sendVerifyMail bool
}

type Config struct {
	SessionTTL            time.Duration
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
	MailTimeout           time.Duration

	VerifyEmailBaseURL   string
	PasswordResetBaseURL string

	// AutoVerify creates accounts already verified. Never on in production.
	AutoVerify bool
	// SendVerificationEmail mails a verification link after registration.
	SendVerificationEmail bool
}

func NewService(users UserRepo, hasher PasswordHasher, tokens TokenService, mailer Mailer, cfg Config) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		audit:  func(string, map[string]string) {},
		now:    time.Now,

		sessionTTL:       orDefault(cfg.SessionTTL, 7*24*time.Hour),
		verifyEmailTTL:   orDefault(cfg.VerifyEmailTokenTTL, time.Hour),
		passwordResetTTL: orDefault(cfg.PasswordResetTokenTTL, time.Hour),
		mailTimeout:      orDefault(cfg.MailTimeout, 10*time.Second),

		verifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,

		autoVerify:     cfg.AutoVerify,
		sendVerifyMail: cfg.SendVerificationEmail,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// AuthResult is what register and login hand back to the transport layer.
type AuthResult struct {
	Token string
	User  domain.User // public projection
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) issueSession(u domain.User) (string, error) {
	tok, err := s.tokens.Issue(TokenClaims{UserID: u.ID, Email: u.Email, Purpose: PurposeSession}, s.sessionTTL)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return tok, nil
}

// mailContext bounds a mailer call; it keeps request values but the deadline is ours.
func (s *Service) mailContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.mailTimeout)
}
