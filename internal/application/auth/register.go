package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/metrics"
	"github.com/baechuer/homi/internal/validation"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50" msg:"Name must be between 2 and 50 characters"`
	Email    string `json:"email" validate:"required,email" msg:"Please provide a valid email address"`
	Password string `json:"password" validate:"required,min=8" msg:"Password must be at least 8 characters long"`
}

// Register creates an unverified account (unless auto-verify is configured),
// returns a session token and, when enabled, mails a verification link.
// Mail failures never fail the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return AuthResult{}, domain.ErrEmailAlreadyExists()
	case !domain.Is(err, "user_not_found"):
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, hashErr(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Name:         domain.EscapeMarkup(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Verified:     s.autoVerify,
		CreatedAt:    s.now().UTC(),
	}

	// unique violation from a concurrent register surfaces as ErrEmailAlreadyExists
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}

	tok, err := s.issueSession(created)
	if err != nil {
		return AuthResult{}, err
	}

	metrics.RecordRegistration()
	s.audit("register", map[string]string{"user_id": created.ID, "email": created.Email})

	if s.sendVerifyMail && !created.Verified {
		if err := s.sendVerification(ctx, created); err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Str("user_id", created.ID).Msg("verification email not sent")
		}
	}

	return AuthResult{Token: tok, User: created.Public()}, nil
}

func (s *Service) sendVerification(ctx context.Context, u domain.User) error {
	tok, err := s.tokens.Issue(TokenClaims{UserID: u.ID, Email: u.Email, Purpose: PurposeVerifyEmail}, s.verifyEmailTTL)
	if err != nil {
		return err
	}

	mctx, cancel := s.mailContext(ctx)
	defer cancel()

	err = s.mailer.SendVerifyEmail(mctx, VerifyEmailMail{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		URL:    s.verifyEmailBaseURL + tok,
	})
	metrics.RecordMail(string(PurposeVerifyEmail), err)
	return err
}

// hashErr keeps hasher domain errors (e.g. password too long) and wraps the rest.
func hashErr(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrHashFailed(err)
}
