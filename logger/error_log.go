package logger

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Headers whose values never reach the logs. Any header containing one of
// redactedHeaderParts is dropped as well.
var (
	redactedHeaders     = map[string]bool{"authorization": true, "cookie": true, "set-cookie": true}
	redactedHeaderParts = []string{"token", "key", "secret"}
)

// LogError logs err at error level. When ctx is a *gin.Context the request id,
// staff id, route and any feedback id in the path are attached. Outside
// production a stack trace is included.
func LogError(ctx context.Context, err error, message string, metadata map[string]interface{}) {
	fields := make([]zap.Field, 0, 8+len(metadata))
	fields = append(fields, zap.Error(err), zap.String("error_type", errorType(err)))

	if c, ok := ctx.(*gin.Context); ok {
		fields = append(fields, requestFields(c)...)
	}
	if !isProduction() {
		fields = append(fields, zap.StackSkip("stack_trace", 1))
	}
	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}

	GetLogger().Desugar().Error(message, fields...)
}

// LogHTTPError logs an error raised while serving c together with the
// response status and the redacted request headers.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	LogError(c, err, message, map[string]interface{}{
		"status_code": statusCode,
		"headers":     filterSensitiveHeaders(c.Request.Header),
	})
}

func requestFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("ip_address", c.ClientIP()),
	}
	if route := c.FullPath(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if requestID := c.GetString("request_id"); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if staffID := c.GetString("staff_id"); staffID != "" {
		fields = append(fields, zap.String("staff_id", staffID))
	}
	if feedbackID := c.Param("id"); feedbackID != "" {
		fields = append(fields, zap.String("feedback_id", feedbackID))
	}
	return fields
}

func errorType(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	return name[strings.LastIndex(name, ".")+1:]
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitiveHeader(name) {
			filtered[name] = "[REDACTED]"
			continue
		}
		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}
	return filtered
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	if redactedHeaders[lower] {
		return true
	}
	for _, part := range redactedHeaderParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}
