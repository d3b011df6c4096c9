package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository"
)

// Compile-time check that *DB satisfies the interface the service uses.
var _ repository.FeedbackRepository = (*DB)(nil)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

const feedbackColumns = `id, name, email, message, category, sentiment, created_at, is_read, ai_response_draft`

// Create inserts fb, assigning its ID (xid: 20 chars, time-sortable) and,
// when unset, its CreatedAt.
func (db *DB) Create(ctx context.Context, fb *model.Feedback) error {
	fb.ID = xid.New().String()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO feedback (id, name, email, message, category, sentiment, created_at, is_read, ai_response_draft)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID,
		fb.Name,
		fb.Email,
		fb.Message,
		fb.Category,
		fb.Sentiment,
		fb.CreatedAt,
		fb.IsRead,
		nullString(fb.AIResponseDraft),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating feedback: %w", err)
	}
	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Feedback, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)

	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("feedback", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting feedback %s: %w", id, err)
	}
	return fb, nil
}

// List returns feedback newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Feedback, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	// xid ids sort by creation time, so id breaks created_at ties.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+feedbackColumns+`
		 FROM feedback
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing feedback: %w", err)
	}
	defer rows.Close()

	items := make([]model.Feedback, 0, limit)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning feedback row: %w", err)
		}
		items = append(items, *fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating feedback: %w", err)
	}
	return items, nil
}

// SetReplyDraft attaches a drafted reply. It is the only mutation a
// feedback record ever sees.
func (db *DB) SetReplyDraft(ctx context.Context, id, draft string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE feedback SET ai_response_draft = ? WHERE id = ?`, draft, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating feedback %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("feedback", id)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(r rowScanner) (*model.Feedback, error) {
	var fb model.Feedback
	var draft sql.NullString
	if err := r.Scan(
		&fb.ID, &fb.Name, &fb.Email, &fb.Message,
		&fb.Category, &fb.Sentiment, &fb.CreatedAt, &fb.IsRead, &draft,
	); err != nil {
		return nil, err
	}
	if draft.Valid {
		fb.AIResponseDraft = &draft.String
	}
	return &fb, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
