package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/homi/internal/application/auth"
	"github.com/baechuer/homi/internal/domain"
)

// JWTService signs every token purpose with one process-wide HS256 secret.
// Rotating the secret invalidates all outstanding tokens.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTService(secret string, issuer string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type claims struct {
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *JWTService) Issue(c auth.TokenClaims, ttl time.Duration) (string, error) {
	now := s.now()
	tc := claims{
		Email:   c.Email,
		Purpose: string(c.Purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTService) Verify(token string, purpose auth.Purpose) (auth.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return auth.TokenClaims{}, mapJWTError(err)
	}

	tc, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || tc.Subject == "" {
		return auth.TokenClaims{}, domain.ErrTokenMalformed()
	}
	if auth.Purpose(tc.Purpose) != purpose {
		return auth.TokenClaims{}, domain.ErrTokenMalformed()
	}

	return auth.TokenClaims{
		UserID:    tc.Subject,
		Email:     tc.Email,
		Purpose:   purpose,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired()
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignatureInvalid()
	default:
		return domain.ErrTokenMalformed()
	}
}
