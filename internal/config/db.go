package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/homi/internal/logger"
)

const (
	dbMaxOpen     = 20
	dbMaxIdle     = 10
	dbIdleTime    = 5 * time.Minute
	dbMaxLifetime = time.Hour
	dbPingTimeout = 3 * time.Second
)

// NewDB opens the postgres pool through the pgx stdlib driver and fails fast
// when the server cannot be reached.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_ADDR is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpen)
	db.SetMaxIdleConns(dbMaxIdle)
	db.SetConnMaxIdleTime(dbIdleTime)
	db.SetConnMaxLifetime(dbMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if debug {
		logConnection(ctx, db)
	}
	return db, nil
}

func logConnection(ctx context.Context, db *sql.DB) {
	var user, name, version string
	err := db.QueryRowContext(ctx,
		"SELECT current_user, current_database(), current_setting('server_version')",
	).Scan(&user, &name, &version)
	if err != nil {
		logger.Logger.Debug().Err(err).Msg("db connected; server info unavailable")
		return
	}
	logger.Logger.Debug().
		Str("user", user).
		Str("db", name).
		Str("version", version).
		Msg("db connected")
}

// DBPinger adapts *sql.DB to the readiness probe.
type DBPinger struct{ DB *sql.DB }

func (p DBPinger) Ping(ctx context.Context) error { return p.DB.PingContext(ctx) }
