package journal

import (
	"context"

	"github.com/baechuer/homi/internal/domain"
)

/*
EntryRepo
---------
Entries are append-only: create and list, nothing else.
ListByUser returns newest first plus the user's total entry count.
*/
type EntryRepo interface {
	Create(ctx context.Context, e domain.Entry) (domain.Entry, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Entry, int, error)
}

/*
CompletionProvider
------------------
Black-box text generation. Any error, including a deadline, means "no feedback".
*/
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
