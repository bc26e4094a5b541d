package journal

import (
	"time"

	"github.com/baechuer/homi/internal/ratelimit"
)

const (
	// Persona is the fixed system prompt for entry feedback.
	Persona = "You are Homi, a gentle AI journaling companion. Read the user's journal entry and respond with a warm, empathetic message and a reflective prompt."

	// FallbackFeedback replaces a failed or empty completion.
	FallbackFeedback = "Thank you for sharing. Putting your thoughts into words is a meaningful step, and it's okay to take things one moment at a time."

	// MaxPromptChars caps the entry text sent to the provider.
	MaxPromptChars = 2000
)

type Service struct {
	entries  EntryRepo
	provider CompletionProvider
	limiter  ratelimit.Limiter
	policy   ratelimit.Policy
	now      func() time.Time

	timeout     time.Duration
	maxTokens   int
	temperature float32
}

type Config struct {
	FeedbackPolicy  ratelimit.Policy
	FeedbackTimeout time.Duration
	MaxTokens       int
	Temperature     float32
}

func NewService(entries EntryRepo, provider CompletionProvider, limiter ratelimit.Limiter, cfg Config) *Service {
	p := cfg.FeedbackPolicy
	if p.Name == "" {
		p = ratelimit.Policy{Name: "ai_feedback", Limit: 10, Window: time.Minute}
	}
	timeout := cfg.FeedbackTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	return &Service{
		entries:     entries,
		provider:    provider,
		limiter:     limiter,
		policy:      p,
		now:         time.Now,
		timeout:     timeout,
		maxTokens:   maxTokens,
		temperature: temp,
	}
}
