package middleware

import (
	"errors"
	"fmt"

	"github.com/NomadCrew/feedback-desk/internal/auth"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like 'sub') is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// Validator checks a token and returns the staff id it was issued to.
type Validator interface {
	Validate(tokenString string) (string, error)
}

// JWTValidator validates HS256 staff tokens.
type JWTValidator struct {
	secret []byte
}

var _ Validator = (*JWTValidator)(nil)

func NewJWTValidator(secret string) (*JWTValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT validator configuration error: staff secret is empty")
	}
	return &JWTValidator{secret: []byte(secret)}, nil
}

// Validate returns the subject of a valid staff token, or one of
// ErrTokenExpired, ErrTokenInvalid and ErrTokenMissingClaim.
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(auth.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return "", fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	sub := token.Subject()
	if sub == "" {
		return "", fmt.Errorf("%w: sub", ErrTokenMissingClaim)
	}
	role, ok := token.Get("role")
	if !ok || role != auth.StaffRole {
		return "", fmt.Errorf("%w: role", ErrTokenMissingClaim)
	}
	return sub, nil
}
