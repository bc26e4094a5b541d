package journal

import (
	"context"
	"math"

	"github.com/baechuer/homi/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

type Page struct {
	Entries    []domain.Entry
	Pagination Pagination
}

// ListEntries returns one page of userID's entries, newest first. Non-positive
// page or pageSize fall back to the defaults; pageSize is capped.
func (s *Service) ListEntries(ctx context.Context, userID string, page, pageSize int) (Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	entries, total, err := s.entries.ListByUser(ctx, userID, pageOffset(page, pageSize), pageSize)
	if err != nil {
		return Page{}, err
	}
	if entries == nil {
		entries = []domain.Entry{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	return Page{
		Entries: entries,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// pageOffset saturates at math.MaxInt so an absurd page reads past the end
// instead of wrapping negative.
func pageOffset(page, pageSize int) int {
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
