package auth

import (
	"context"
	"time"

	"github.com/baechuer/homi/internal/domain"
)

/*
UserRepo
--------
Persistence port for users. Emails arrive already normalized.
GetByEmail / GetByID / GetPublicByID return domain.ErrUserNotFound when absent;
Create returns domain.ErrEmailAlreadyExists on a duplicate email.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetPublicByID never loads the password hash.
	GetPublicByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetVerified(ctx context.Context, userID string) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenService
------------
Issues and verifies signed, single-purpose tokens.
A token minted for one purpose never verifies for another.
*/
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposePasswordReset Purpose = "password_reset"
)

type TokenClaims struct {
	UserID    string
	Email     string
	Purpose   Purpose
	ExpiresAt time.Time
}

type TokenService interface {
	Issue(c TokenClaims, ttl time.Duration) (string, error)
	Verify(token string, purpose Purpose) (TokenClaims, error)
}

/*
Mailer
------
Delivers account emails: directly over SMTP, or handed off to RabbitMQ.
*/
type Mailer interface {
	SendVerifyEmail(ctx context.Context, m VerifyEmailMail) error
	SendPasswordReset(ctx context.Context, m PasswordResetMail) error
}

type VerifyEmailMail struct {
	UserID string
	Name   string
	Email  string
	URL    string
}

type PasswordResetMail struct {
	UserID string
	Name   string
	Email  string
	URL    string
}
