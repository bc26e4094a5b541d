package auth

import (
	"context"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/metrics"
)

// Login authenticates a verified user and issues a session token.
// IMPORTANT: unknown email and wrong password must be indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, domain.ErrCredentialsRequired()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			metrics.RecordLogin("invalid_credentials")
			return AuthResult{}, domain.ErrInvalidCredentials()
		}
		return AuthResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		metrics.RecordLogin("invalid_credentials")
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if !u.Verified {
		metrics.RecordLogin("unverified")
		return AuthResult{}, domain.ErrEmailNotVerified()
	}

	tok, err := s.issueSession(u)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("last_login not updated")
	} else {
		u.LastLogin = &now
	}

	metrics.RecordLogin("success")
	s.audit("login", map[string]string{"user_id": u.ID})

	return AuthResult{Token: tok, User: u.Public()}, nil
}
