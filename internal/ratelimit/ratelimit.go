// Package ratelimit holds the fixed-window limiter port shared by the auth
// endpoints and the AI-feedback path.
package ratelimit

import (
	"context"
	"time"

	"github.com/baechuer/homi/internal/domain"
)

// Policy names an independent quota: Limit points per Window per key.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 0 if allowed
	ResetAt    time.Time
}

// Limiter consumes one point for key under policy. Implementations must make the
// consume-and-check atomic per key.
type Limiter interface {
	Allow(ctx context.Context, p Policy, key string) (Decision, error)
}

// Consume is the ok | RateLimited form of Allow.
func Consume(ctx context.Context, l Limiter, p Policy, key string) (Decision, error) {
	d, err := l.Allow(ctx, p, key)
	if err != nil {
		return d, err
	}
	if !d.Allowed {
		return d, domain.ErrRateLimited(p.Name)
	}
	return d, nil
}

// Normalize fills the defaults every backend applies before building a key:
// a one-minute window and the "default" name.
func Normalize(p Policy) Policy {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Name == "" {
		p.Name = "default"
	}
	return p
}
