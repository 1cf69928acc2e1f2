package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPgx5URL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/feedback", "pgx5://u:p@localhost:5432/feedback"},
		{"postgresql://u:p@localhost/feedback?sslmode=disable", "pgx5://u:p@localhost/feedback?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, convertToPgx5URL(tt.in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/000001_create_feedback.up.sql")
	assert.Contains(t, files, "migrations/000001_create_feedback.down.sql")
}
