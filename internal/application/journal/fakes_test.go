package journal

import (
	"context"
	"errors"
	"sync"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/ratelimit"
)

type fakeEntries struct {
	mu         sync.Mutex
	entries    []domain.Entry // insertion order
	err        error
	lastOffset int
}

func (f *fakeEntries) Create(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Entry{}, f.err
	}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeEntries) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Entry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOffset = offset
	if f.err != nil {
		return nil, 0, f.err
	}
	var mine []domain.Entry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].UserID == userID {
			mine = append(mine, f.entries[i])
		}
	}
	total := len(mine)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return mine[offset:end], total, nil
}

type fakeProvider struct {
	mu    sync.Mutex
	out   string
	err   error
	block bool
	calls []CompletionRequest
}

func (p *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	out, err, block := p.out, p.err, p.block
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return out, err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, p ratelimit.Policy, key string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("limiter backend down")
}
