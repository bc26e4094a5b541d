package dto

import (
	"time"

	"github.com/baechuer/homi/internal/application/journal"
	"github.com/baechuer/homi/internal/domain"
)

// UserView is the only user shape that leaves the server; it never carries the hash.
type UserView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Verified  bool       `json:"verified"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Verified:  u.Verified,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type AuthData struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type MeData struct {
	User UserView `json:"user"`
}

type EntryView struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	AIFeedback  string    `json:"aiFeedback"`
	HasFeedback bool      `json:"hasFeedback"`
	WordCount   int       `json:"wordCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewEntryView(e domain.Entry) EntryView {
	return EntryView{
		ID:          e.ID,
		Text:        e.Text,
		AIFeedback:  e.AIFeedback,
		HasFeedback: e.HasFeedback,
		WordCount:   e.WordCount,
		CreatedAt:   e.CreatedAt,
	}
}

type PaginationView struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type EntriesData struct {
	Entries    []EntryView    `json:"entries"`
	Pagination PaginationView `json:"pagination"`
}

func NewEntriesData(p journal.Page) EntriesData {
	views := make([]EntryView, 0, len(p.Entries))
	for _, e := range p.Entries {
		views = append(views, NewEntryView(e))
	}
	return EntriesData{
		Entries: views,
		Pagination: PaginationView{
			Page:       p.Pagination.Page,
			Limit:      p.Pagination.PageSize,
			Total:      p.Pagination.Total,
			TotalPages: p.Pagination.TotalPages,
			HasNext:    p.Pagination.HasNext,
			HasPrev:    p.Pagination.HasPrev,
		},
	}
}

type CreatedEntryData struct {
	Entry       EntryView `json:"entry"`
	HasFeedback bool      `json:"hasFeedback"`
}
