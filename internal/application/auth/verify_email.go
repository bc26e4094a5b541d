package auth

import (
	"context"
	"strings"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/metrics"
)

// VerifyEmail redeems a verification token. Redeeming twice is harmless.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrOneTimeTokenInvalid()
	}

	claims, err := s.tokens.Verify(token, PurposeVerifyEmail)
	if err != nil {
		return domain.ErrOneTimeTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrOneTimeTokenSubject()
		}
		return err
	}

	if !u.Verified {
		if err := s.users.SetVerified(ctx, u.ID); err != nil {
			return err
		}
		metrics.RecordEmailVerification()
	}

	s.audit("verify_email", map[string]string{"user_id": u.ID})
	return nil
}

// ResendVerification mails a fresh verification link.
// IMPORTANT: non-enumerating - unknown or already verified emails return nil.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return nil
		}
		return err
	}
	if u.Verified {
		return nil
	}

	if err := s.sendVerification(ctx, u); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("verification email not resent")
	}
	return nil
}
