package domain

import (
	"strings"
	"time"
)

const (
	EntryMinChars = 10
	EntryMaxChars = 10000
)

// Entry is immutable once stored.
type Entry struct {
	ID          string
	UserID      string
	Text        string
	AIFeedback  string
	HasFeedback bool
	WordCount   int
	CreatedAt   time.Time
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
