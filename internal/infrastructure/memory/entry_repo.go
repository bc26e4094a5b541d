package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/homi/internal/domain"
)

type EntryRepo struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Entry // oldest first
}

func NewEntryRepo() *EntryRepo {
	return &EntryRepo{byUser: make(map[string][]domain.Entry)}
}

func (r *EntryRepo) Create(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if e.ID == "" {
		return domain.Entry{}, domain.ErrMissingField("id")
	}
	if e.UserID == "" {
		return domain.Entry{}, domain.ErrMissingField("user_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.byUser[e.UserID], e)
	// keep creation order stable when timestamps tie
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	r.byUser[e.UserID] = list
	return e, nil
}

func (r *EntryRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Entry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byUser[userID]
	total := len(list)
	if offset < 0 {
		offset = 0
	}
	if offset >= total || limit <= 0 {
		return []domain.Entry{}, total, nil
	}

	end := min(offset+limit, total)
	out := make([]domain.Entry, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, list[total-1-i])
	}
	return out, total, nil
}
