package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/baechuer/homi/internal/domain"
)

type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

func (r *EntryRepo) Create(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if e.ID == "" {
		return domain.Entry{}, domain.ErrMissingField("id")
	}
	if e.UserID == "" {
		return domain.Entry{}, domain.ErrMissingField("user_id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO entries (id, user_id, text, ai_feedback, has_feedback, word_count, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.UserID, e.Text, e.AIFeedback, e.HasFeedback, e.WordCount, e.CreatedAt,
	)
	if err != nil {
		return domain.Entry{}, domain.ErrDBUnavailable(err)
	}
	return e, nil
}

func (r *EntryRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Entry, int, error) {
	const countQ = `SELECT COUNT(1) FROM entries WHERE user_id = $1;`

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	if total == 0 || offset >= total {
		return []domain.Entry{}, total, nil
	}

	const q = `
SELECT id, user_id, text, ai_feedback, has_feedback, word_count, created_at
FROM entries
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	out := make([]domain.Entry, 0, limit)
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.AIFeedback, &e.HasFeedback, &e.WordCount, &e.CreatedAt); err != nil {
			return nil, 0, domain.ErrDBUnavailable(err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	return out, total, nil
}
