package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/baechuer/homi/internal/application/auth"
)

// SMTPSender delivers account emails directly. It implements auth.Mailer.
type SMTPSender struct {
	lg zerolog.Logger

	host     string
	port     int
	user     string
	pass     string
	from     string
	insecure bool

	timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		lg:       lg.With().Str("component", "smtp_sender").Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.Username,
		pass:     cfg.Password,
		from:     cfg.From,
		insecure: cfg.Insecure,
		timeout:  cfg.Timeout,
	}
}

func (s *SMTPSender) SendVerifyEmail(ctx context.Context, m auth.VerifyEmailMail) error {
	msg, err := verifyEmailMessage(m)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, m auth.PasswordResetMail) error {
	msg, err := passwordResetMessage(m)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *SMTPSender) build(msg message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("smtp: invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp: invalid to address: %w", err)
	}
	m.Subject(msg.Subject)

	// Text fallback + HTML alternative
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (s *SMTPSender) send(ctx context.Context, msg message) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	tlsPolicy := mail.TLSMandatory
	if s.insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.user), mail.WithPassword(s.pass))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("smtp send failed")
		if isAuthFailure(err.Error()) {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
		return fmt.Errorf("smtp send: %w", err)
	}

	s.lg.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("smtp send ok")
	return nil
}

func isAuthFailure(msg string) bool {
	for _, x := range []string{"535", "5.7.8", "authentication", "Username and Password not accepted"} {
		if strings.Contains(msg, x) {
			return true
		}
	}
	return false
}
