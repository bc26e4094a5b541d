package completion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/homi/internal/application/journal"
	"github.com/baechuer/homi/internal/logger"
)

type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls fail immediately
	StateHalfOpen              // limited probes pass through
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

var (
	ErrBreakerOpen     = errors.New("completion: circuit breaker is open")
	ErrHalfOpenLimited = errors.New("completion: circuit breaker half-open limit reached")
)

type BreakerConfig struct {
	MaxFailures      int           // consecutive failures before opening
	ResetTimeout     time.Duration // open -> half-open after this long
	HalfOpenMaxCalls int           // concurrent probes allowed while half-open
}

// Breaker wraps a provider so a dead upstream fails fast instead of eating the
// feedback timeout on every entry.
type Breaker struct {
	next journal.CompletionProvider
	cfg  BreakerConfig
	now  func() time.Time

	mu            sync.Mutex
	state         State
	failureCount  int
	openedAt      time.Time
	halfOpenCalls int
}

func NewBreaker(next journal.CompletionProvider, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &Breaker{next: next, cfg: cfg, now: time.Now, state: StateClosed}
}

func (b *Breaker) Complete(ctx context.Context, req journal.CompletionRequest) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}

	out, err := b.next.Complete(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure(ctx)
		return "", err
	}
	b.recordSuccess(ctx)
	return out, nil
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		b.state = StateHalfOpen
		b.halfOpenCalls = 0
	}

	switch b.state {
	case StateOpen:
		return ErrBreakerOpen
	case StateHalfOpen:
		if b.halfOpenCalls >= b.cfg.HalfOpenMaxCalls {
			return ErrHalfOpenLimited
		}
		b.halfOpenCalls++
	}
	return nil
}

// caller holds b.mu
func (b *Breaker) recordFailure(ctx context.Context) {
	b.failureCount++
	if b.state == StateHalfOpen || b.failureCount >= b.cfg.MaxFailures {
		if b.state != StateOpen {
			logger.WithCtx(ctx).Warn().Int("failures", b.failureCount).Msg("completion breaker opened")
		}
		b.state = StateOpen
		b.openedAt = b.now()
		b.halfOpenCalls = 0
	}
}

// caller holds b.mu
func (b *Breaker) recordSuccess(ctx context.Context) {
	b.failureCount = 0
	if b.state == StateHalfOpen {
		logger.WithCtx(ctx).Info().Msg("completion breaker closed")
		b.state = StateClosed
		b.halfOpenCalls = 0
	}
}
