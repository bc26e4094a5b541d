package auth

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/metrics"
)

const minPasswordChars = 8

// RequestPasswordReset mails a one-hour reset link.
// Unlike login this reports unknown emails (404).
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	tok, err := s.tokens.Issue(TokenClaims{UserID: u.ID, Email: u.Email, Purpose: PurposePasswordReset}, s.passwordResetTTL)
	if err != nil {
		return err
	}

	mctx, cancel := s.mailContext(ctx)
	defer cancel()

	err = s.mailer.SendPasswordReset(mctx, PasswordResetMail{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		URL:    s.passwordResetBaseURL + tok,
	})
	metrics.RecordMail(string(PurposePasswordReset), err)
	if err != nil {
		return domain.ErrMailDispatch(err)
	}

	s.audit("password_reset_request", map[string]string{"user_id": u.ID})
	return nil
}

// ResetPassword redeems a reset token and stores the new hash.
// Session tokens issued before the reset stay valid until they expire.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if newPassword == "" {
		return domain.ErrMissingField("password")
	}
	if utf8.RuneCountInString(newPassword) < minPasswordChars {
		return domain.ErrInvalidField("password", "Password must be at least 8 characters long")
	}

	claims, err := s.tokens.Verify(token, PurposePasswordReset)
	if err != nil {
		return domain.ErrOneTimeTokenInvalid()
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrOneTimeTokenSubject()
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return hashErr(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, claims.UserID, hash); err != nil {
		return err
	}

	metrics.RecordPasswordReset()
	s.audit("password_reset", map[string]string{"user_id": claims.UserID})
	return nil
}
