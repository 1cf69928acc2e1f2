package middleware

import (
	"github.com/NomadCrew/feedback-desk/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the browser hardening headers. Responses
// carry submitter contact details, so they are never cached.
func SecurityHeadersMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")

		// HSTS only in production so local http keeps working.
		if cfg.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
