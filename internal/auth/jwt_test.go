package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-testing"

func TestGenerateStaffToken(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		subject string
		ttl     time.Duration
		wantErr bool
	}{
		{name: "valid token", secret: testSecret, subject: "staff-1", ttl: time.Hour},
		{name: "empty secret", secret: "", subject: "staff-1", ttl: time.Hour, wantErr: true},
		{name: "empty subject", secret: testSecret, subject: "", ttl: time.Hour, wantErr: true},
		{name: "already expired", secret: testSecret, subject: "staff-1", ttl: -time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateStaffToken(tt.secret, tt.subject, tt.ttl)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Len(t, strings.Split(token, "."), 3)
		})
	}
}

func TestGenerateStaffToken_Claims(t *testing.T) {
	token, err := GenerateStaffToken(testSecret, "staff-42", 30*time.Minute)
	require.NoError(t, err)

	claims := &StaffClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "staff-42", claims.Subject)
	assert.Equal(t, StaffRole, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateStaffToken_WrongSecretRejected(t *testing.T) {
	token, err := GenerateStaffToken(testSecret, "staff-1", time.Hour)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(token, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret-key-that-is-long-enough"), nil
	})
	assert.Error(t, err)
}

func TestStaffIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, StaffIDFromContext(ctx))

	ctx = WithStaffID(ctx, "staff-7")
	assert.Equal(t, "staff-7", StaffIDFromContext(ctx))
}
