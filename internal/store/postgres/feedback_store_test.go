package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-desk/db"
	"github.com/NomadCrew/feedback-desk/internal/store"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	logger.IsTest = true

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("feedback"),
		tcpostgres.WithUsername("feedback"),
		tcpostgres.WithPassword("feedback"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestFeedbackStore_Integration(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()
	s := NewFeedbackStore(pool)

	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	entries := []*types.Feedback{
		{Name: "John Doe", Email: "john@example.com", Subject: "Great Service", Message: "Exceptional support team",
			Rating: 5, Category: types.FeedbackCategoryService, Status: types.FeedbackStatusNew, CreatedAt: created},
		{Name: "Sarah Smith", Email: "sarah@example.com", Subject: "Product 100% broken", Message: "Arrived damaged in transit",
			Rating: 2, Category: types.FeedbackCategoryProduct, Status: types.FeedbackStatusInProgress, CreatedAt: created},
		{Name: "Mike Johnson", Email: "mike@example.com", Subject: "Feature Request", Message: "Please add dark mode",
			Rating: 4, Category: types.FeedbackCategoryFeature, Status: types.FeedbackStatusResolved, CreatedAt: created},
	}
	var ids []string
	for _, fb := range entries {
		id, err := s.CreateFeedback(ctx, fb)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	all, err := s.ListFeedback(ctx, types.MatchAllFilter())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, fb := range all {
		assert.Equal(t, ids[i], fb.ID, "insertion order")
	}

	// "%" is matched literally rather than as a wildcard.
	pct, err := s.ListFeedback(ctx, types.FeedbackFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, pct, 1)
	assert.Equal(t, "Sarah Smith", pct[0].Name)

	literal, err := s.ListFeedback(ctx, types.FeedbackFilter{Search: "%"})
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	stats, err := s.FeedbackStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.7, stats.AvgRating)

	updated, previous, err := s.UpdateFeedbackStatus(ctx, ids[0], types.FeedbackStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackStatusNew, previous)
	assert.Equal(t, types.FeedbackStatusResolved, updated.Status)
	resolved, err := s.ListFeedback(ctx, types.FeedbackFilter{Status: "resolved"})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)

	require.NoError(t, s.DeleteFeedback(ctx, ids[1]))
	_, err = s.GetFeedback(ctx, ids[1])
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateFeedback(ctx, &types.Feedback{ID: ids[0], Name: "dup", Email: "d@x.io", Subject: "s",
		Message: "duplicate entry", Rating: 1, Category: types.FeedbackCategoryGeneral, Status: types.FeedbackStatusNew, CreatedAt: created})
	assert.ErrorIs(t, err, store.ErrConflict)
}
