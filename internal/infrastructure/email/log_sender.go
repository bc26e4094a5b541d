package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/homi/internal/application/auth"
)

// LogSender writes account emails to the log instead of delivering them.
// Used in development when no SMTP server or broker is configured.
type LogSender struct {
	lg zerolog.Logger
}

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{lg: lg.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) SendVerifyEmail(ctx context.Context, m auth.VerifyEmailMail) error {
	s.lg.Info().
		Str("to", m.Email).
		Str("user_id", m.UserID).
		Str("url", m.URL).
		Msg("verify email (not delivered)")
	return nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, m auth.PasswordResetMail) error {
	s.lg.Info().
		Str("to", m.Email).
		Str("user_id", m.UserID).
		Str("url", m.URL).
		Msg("password reset (not delivered)")
	return nil
}
