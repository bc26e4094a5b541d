package completion

import (
	"context"
	"errors"

	"github.com/baechuer/homi/internal/application/journal"
)

var ErrDisabled = errors.New("completion: provider not configured")

// Disabled always fails, so every feedback request gets the canned reply.
type Disabled struct{}

func (Disabled) Complete(context.Context, journal.CompletionRequest) (string, error) {
	return "", ErrDisabled
}
