package http_handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/baechuer/homi/internal/application/journal"
	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/transport/http/dto"
	"github.com/baechuer/homi/internal/transport/http/middleware"
	"github.com/baechuer/homi/internal/transport/http/response"
)

type JournalService interface {
	AddEntry(ctx context.Context, userID, text string, requestFeedback bool) (domain.Entry, error)
	ListEntries(ctx context.Context, userID string, page, pageSize int) (journal.Page, error)
}

type EntriesHandler struct {
	svc JournalService
}

func NewEntriesHandler(svc JournalService) *EntriesHandler {
	return &EntriesHandler{svc: svc}
}

// List handles GET /entries?page=&limit=. Bad query values fall back to defaults.
func (h *EntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	q := r.URL.Query()
	page := queryInt(q.Get("page"), journal.DefaultPage)
	limit := queryInt(q.Get("limit"), journal.DefaultPageSize)

	res, err := h.svc.ListEntries(r.Context(), u.ID, page, limit)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewEntriesData(res))
}

func (h *EntriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.CreateEntryRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	e, err := h.svc.AddEntry(r.Context(), u.ID, req.Text, req.WantsFeedback())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Created(w, dto.CreatedEntryData{Entry: dto.NewEntryView(e), HasFeedback: e.HasFeedback})
}

func queryInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
