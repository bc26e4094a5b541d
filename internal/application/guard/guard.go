// Package guard resolves the caller of a protected operation from the
// Authorization header. It is the only place session tokens are checked.
package guard

import (
	"context"
	"strings"

	"github.com/baechuer/homi/internal/application/auth"
	"github.com/baechuer/homi/internal/domain"
)

type TokenVerifier interface {
	Verify(token string, purpose auth.Purpose) (auth.TokenClaims, error)
}

// UserReader loads the projection without the password hash.
type UserReader interface {
	GetPublicByID(ctx context.Context, id string) (domain.User, error)
}

type Guard struct {
	tokens TokenVerifier
	users  UserReader
}

func New(tokens TokenVerifier, users UserReader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate accepts "Bearer <session token>" and returns the verified owner.
// Failures: token_missing, token_expired, token_malformed, token_invalid_signature,
// user_gone (401) and verification_required (403).
func (g *Guard) Authenticate(ctx context.Context, authorization string) (domain.User, error) {
	raw, ok := bearerToken(authorization)
	if !ok {
		return domain.User{}, domain.ErrTokenMissing()
	}

	claims, err := g.tokens.Verify(raw, auth.PurposeSession)
	if err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return domain.User{}, domain.ErrTokenMalformed()
	}

	u, err := g.users.GetPublicByID(ctx, claims.UserID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.User{}, domain.ErrUserGone()
		}
		return domain.User{}, err
	}

	if !u.Verified {
		return domain.User{}, domain.ErrVerificationRequired()
	}
	return u.Public(), nil
}

func bearerToken(h string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
