package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name", "email", "subject", "message", "rating", "category", "status", "created_at"}

func setupMockStore(t *testing.T) (*FeedbackStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewFeedbackStore(mock), mock
}

func testFeedback() *types.Feedback {
	return &types.Feedback{
		ID:        "7f0e2d1c-1111-4a2b-9c3d-0123456789ab",
		Name:      "Ann",
		Email:     "ann@x.com",
		Subject:   "Hi",
		Message:   "This is a test message",
		Rating:    4,
		Category:  types.FeedbackCategoryProduct,
		Status:    types.FeedbackStatusNew,
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestFeedbackStore_CreateFeedback(t *testing.T) {
	ctx := context.Background()
	fb := testFeedback()

	t.Run("success", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery("INSERT INTO feedback").
			WithArgs(fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
				"product", "new", fb.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(fb.ID))

		id, err := s.CreateFeedback(ctx, fb)
		require.NoError(t, err)
		assert.Equal(t, fb.ID, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery("INSERT INTO feedback").
			WithArgs(fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
				"product", "new", fb.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		_, err := s.CreateFeedback(ctx, fb)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("database error", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery("INSERT INTO feedback").
			WithArgs(fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
				"product", "new", fb.CreatedAt).
			WillReturnError(errors.New("connection reset"))

		_, err := s.CreateFeedback(ctx, fb)
		assert.ErrorContains(t, err, "failed to create feedback")
	})
}

func TestFeedbackStore_GetFeedback(t *testing.T) {
	ctx := context.Background()
	fb := testFeedback()

	t.Run("found", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM feedback WHERE id = \\$1").
			WithArgs(fb.ID).
			WillReturnRows(pgxmock.NewRows(columns).AddRow(
				fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
				"product", "new", fb.CreatedAt))

		got, err := s.GetFeedback(ctx, fb.ID)
		require.NoError(t, err)
		assert.Equal(t, fb, got)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM feedback WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := s.GetFeedback(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestFeedbackStore_ListFeedback(t *testing.T) {
	ctx := context.Background()
	fb := testFeedback()

	s, mock := setupMockStore(t)
	mock.ExpectQuery("ORDER BY seq").
		WithArgs("ann", "", "product").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
			"product", "new", fb.CreatedAt))

	list, err := s.ListFeedback(ctx, types.FeedbackFilter{Search: "ann", Status: types.FilterAll, Category: "product"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fb, list[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStore_ListFeedbackEmpty(t *testing.T) {
	s, mock := setupMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM feedback").
		WithArgs("", "resolved", "").
		WillReturnRows(pgxmock.NewRows(columns))

	list, err := s.ListFeedback(context.Background(), types.FeedbackFilter{Status: "resolved"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFeedbackStore_UpdateFeedbackStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		s, mock := setupMockStore(t)
		fb := testFeedback()
		mock.ExpectQuery(`(?s)FOR UPDATE.*UPDATE feedback f SET status`).
			WithArgs(fb.ID, "resolved").
			WillReturnRows(pgxmock.NewRows(append(columns, "previous")).
				AddRow(fb.ID, fb.Name, fb.Email, fb.Subject, fb.Message, fb.Rating,
					"product", "resolved", fb.CreatedAt, "in-progress"))

		updated, previous, err := s.UpdateFeedbackStatus(ctx, fb.ID, types.FeedbackStatusResolved)
		require.NoError(t, err)
		assert.Equal(t, types.FeedbackStatusInProgress, previous)
		assert.Equal(t, types.FeedbackStatusResolved, updated.Status)
		assert.Equal(t, "Ann", updated.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery(`UPDATE feedback f SET status`).
			WithArgs("missing", "resolved").
			WillReturnRows(pgxmock.NewRows(append(columns, "previous")))

		_, _, err := s.UpdateFeedbackStatus(ctx, "missing", types.FeedbackStatusResolved)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectQuery(`UPDATE feedback f SET status`).
			WithArgs("1", "resolved").
			WillReturnError(errors.New("connection reset"))

		_, _, err := s.UpdateFeedbackStatus(ctx, "1", types.FeedbackStatusResolved)
		assert.ErrorContains(t, err, "failed to update feedback status")
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})
}

func TestFeedbackStore_DeleteFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectExec("DELETE FROM feedback").
			WithArgs("1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, s.DeleteFeedback(ctx, "1"))
	})

	t.Run("unknown id", func(t *testing.T) {
		s, mock := setupMockStore(t)
		mock.ExpectExec("DELETE FROM feedback").
			WithArgs("1").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.DeleteFeedback(ctx, "1"), store.ErrNotFound)
	})
}

func TestFeedbackStore_FeedbackStats(t *testing.T) {
	s, mock := setupMockStore(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"total", "new", "in_progress", "resolved", "rating_sum"}).
			AddRow(int64(3), int64(1), int64(1), int64(1), int64(11)))

	stats, err := s.FeedbackStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &types.FeedbackStats{Total: 3, New: 1, InProgress: 1, Resolved: 1, AvgRating: 3.7}, stats)
}

func TestFeedbackStore_Ping(t *testing.T) {
	s, mock := setupMockStore(t)
	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, s.Ping(context.Background()))
}
