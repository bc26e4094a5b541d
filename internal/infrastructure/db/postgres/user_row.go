package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/homi/internal/domain"
)

const uniqueViolation = "23505"

type userRow struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	LastLogin    sql.NullTime
	CreatedAt    time.Time
}

func (ur userRow) toDomain() domain.User {
	u := domain.User{
		ID:           ur.ID,
		Name:         ur.Name,
		Email:        ur.Email,
		PasswordHash: ur.PasswordHash,
		Verified:     ur.Verified,
		CreatedAt:    ur.CreatedAt,
	}
	if ur.LastLogin.Valid {
		t := ur.LastLogin.Time
		u.LastLogin = &t
	}
	return u
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
