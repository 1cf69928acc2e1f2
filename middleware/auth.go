package middleware

import (
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/internal/auth"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/gin-gonic/gin"
)

// StaffAuth requires a valid staff token, taken from the Authorization
// header or, for websocket clients that cannot set headers, the token query
// parameter. A nil validator leaves the routes open.
func StaffAuth(validator Validator) gin.HandlerFunc {
	log := logger.GetLogger()
	if validator == nil {
		log.Warn("Staff authentication disabled: no staff JWT secret configured")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		staffID, err := validator.Validate(token)
		if err != nil {
			log.Warnw("Invalid staff token",
				"error", err,
				"path", c.Request.URL.Path)

			message := "Invalid staff token"
			code := "invalid_token"
			if errors.Is(err, ErrTokenExpired) {
				message = "Your session has expired"
				code = "token_expired"
			}
			_ = c.Error(apperrors.Unauthorized(code, message))
			c.Abort()
			return
		}

		c.Set(string(StaffIDKey), staffID)
		c.Request = c.Request.WithContext(auth.WithStaffID(c.Request.Context(), staffID))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}
