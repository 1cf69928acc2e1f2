// Package auth issues staff tokens and carries the authenticated staff id
// through request contexts.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StaffRole is the role claim every staff token carries.
const StaffRole = "staff"

// Issuer names the service in the iss claim.
const Issuer = "feedback-desk"

// StaffClaims are the claims of a staff access token.
type StaffClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateStaffToken signs an HS256 token for subject that expires after ttl.
func GenerateStaffToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret key cannot be empty")
	}
	if subject == "" {
		return "", fmt.Errorf("subject cannot be empty")
	}

	now := time.Now()
	claims := StaffClaims{
		Role: StaffRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

type staffIDKey struct{}

// WithStaffID returns a context carrying the authenticated staff id.
func WithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, staffIDKey{}, staffID)
}

// StaffIDFromContext returns the staff id, or "" for anonymous requests.
func StaffIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(staffIDKey{}).(string)
	return id
}
