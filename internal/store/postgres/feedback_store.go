// Package postgres implements store.FeedbackStore on PostgreSQL via pgx/v5.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ensure FeedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*FeedbackStore)(nil)

const uniqueViolation = "23505"

// DBTX is the part of *pgxpool.Pool the store uses. pgxmock pools satisfy it
// too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// FeedbackStore persists feedback in the feedback table. The seq column
// keeps insertion order for listings.
type FeedbackStore struct {
	db DBTX
}

// NewFeedbackStore creates a new feedback store backed by db.
func NewFeedbackStore(db DBTX) *FeedbackStore {
	return &FeedbackStore{db: db}
}

const feedbackColumns = `id, name, email, subject, message, rating, category, status, created_at`

// CreateFeedback inserts fb and returns its id. An empty id is filled with a
// new UUID.
func (s *FeedbackStore) CreateFeedback(ctx context.Context, fb *types.Feedback) (string, error) {
	id := fb.ID
	if id == "" {
		id = uuid.NewString()
	}

	var stored string
	err := s.db.QueryRow(ctx,
		`INSERT INTO feedback (`+feedbackColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		id, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
		string(fb.Category), string(fb.Status), fb.CreatedAt,
	).Scan(&stored)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("failed to create feedback: %w", err)
	}
	return stored, nil
}

func (s *FeedbackStore) GetFeedback(ctx context.Context, id string) (*types.Feedback, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`, id)

	fb, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

// ListFeedback matches the search term as a plain substring; strpos avoids
// LIKE wildcard interpretation of user input.
func (s *FeedbackStore) ListFeedback(ctx context.Context, filter types.FeedbackFilter) ([]*types.Feedback, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		WHERE ($1 = '' OR strpos(lower(name), lower($1)) > 0
				OR strpos(lower(email), lower($1)) > 0
				OR strpos(lower(subject), lower($1)) > 0)
			AND ($2 = '' OR status = $2)
			AND ($3 = '' OR category = $3)
		ORDER BY seq`,
		filter.Search, constraint(filter.Status), constraint(filter.Category),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	list := make([]*types.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		list = append(list, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return list, nil
}

// UpdateFeedbackStatus locks the row in the CTE so the returned previous
// status is the one this write replaced, even under concurrent updates.
func (s *FeedbackStore) UpdateFeedbackStatus(ctx context.Context, id string, status types.FeedbackStatus) (*types.Feedback, types.FeedbackStatus, error) {
	row := s.db.QueryRow(ctx,
		`WITH prev AS (
			SELECT id, status FROM feedback WHERE id = $1 FOR UPDATE
		)
		UPDATE feedback f SET status = $2
		FROM prev
		WHERE f.id = prev.id
		RETURNING f.id, f.name, f.email, f.subject, f.message, f.rating,
			f.category, f.status, f.created_at, prev.status`,
		id, string(status))

	var previous string
	fb, err := scanFeedback(row, &previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", store.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to update feedback status: %w", err)
	}
	return fb, types.FeedbackStatus(previous), nil
}

func (s *FeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FeedbackStore) FeedbackStats(ctx context.Context) (*types.FeedbackStats, error) {
	var total, newCount, inProgress, resolved, ratingSum int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'in-progress'),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COALESCE(SUM(rating), 0)
		FROM feedback`,
	).Scan(&total, &newCount, &inProgress, &resolved, &ratingSum)
	if err != nil {
		return nil, fmt.Errorf("failed to compute feedback stats: %w", err)
	}
	return types.NewFeedbackStats(int(total), int(newCount), int(inProgress), int(resolved), ratingSum), nil
}

func (s *FeedbackStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// constraint maps the "all" sentinel to the empty string the queries treat
// as unconstrained.
func constraint(v string) string {
	if v == types.FilterAll {
		return ""
	}
	return v
}

// scanFeedback reads feedbackColumns in order, then any extra columns into
// extra.
func scanFeedback(row pgx.Row, extra ...any) (*types.Feedback, error) {
	var (
		fb               types.Feedback
		category, status string
	)
	dest := append([]any{
		&fb.ID,
		&fb.Name,
		&fb.Email,
		&fb.Subject,
		&fb.Message,
		&fb.Rating,
		&category,
		&status,
		&fb.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	fb.Category = types.FeedbackCategory(category)
	fb.Status = types.FeedbackStatus(status)
	return &fb, nil
}
