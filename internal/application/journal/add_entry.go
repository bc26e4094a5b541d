package journal

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/logger"
	"github.com/baechuer/homi/internal/metrics"
	"github.com/baechuer/homi/internal/ratelimit"
)

// AddEntry stores a new entry for userID. Feedback is best effort: a rate-limited
// user or a failing provider still gets the entry saved.
func (s *Service) AddEntry(ctx context.Context, userID, text string, requestFeedback bool) (domain.Entry, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < domain.EntryMinChars || n > domain.EntryMaxChars {
		return domain.Entry{}, domain.ErrEntryLength(domain.EntryMinChars, domain.EntryMaxChars)
	}

	sanitized := domain.EscapeMarkup(text)

	feedback := ""
	if requestFeedback {
		feedback = s.feedback(ctx, userID, text)
	} else {
		metrics.RecordFeedback(metrics.FeedbackSkipped)
	}

	e := domain.Entry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Text:        sanitized,
		AIFeedback:  feedback,
		HasFeedback: feedback != "",
		WordCount:   domain.CountWords(text),
		CreatedAt:   s.now().UTC(),
	}
	return s.entries.Create(ctx, e)
}

// feedback takes the trimmed raw text; it is capped before escaping so the
// cut never lands inside an entity.
func (s *Service) feedback(ctx context.Context, userID, text string) string {
	lg := logger.WithCtx(ctx)

	if _, err := ratelimit.Consume(ctx, s.limiter, s.policy, userID); err != nil {
		if domain.Is(err, "rate_limited") {
			metrics.RecordRateLimited(s.policy.Name)
			metrics.RecordFeedback(metrics.FeedbackRateLimited)
			return ""
		}
		lg.Warn().Err(err).Str("user_id", userID).Msg("feedback limiter failed; skipping feedback")
		metrics.RecordFeedback(metrics.FeedbackSkipped)
		return ""
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.provider.Complete(cctx, CompletionRequest{
		System:      Persona,
		Prompt:      domain.EscapeMarkup(truncateRunes(text, MaxPromptChars)),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		if err != nil {
			lg.Warn().Err(err).Str("user_id", userID).Msg("completion failed; using fallback feedback")
		}
		metrics.RecordFeedback(metrics.FeedbackFallback)
		return FallbackFeedback
	}

	metrics.RecordFeedback(metrics.FeedbackGenerated)
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
