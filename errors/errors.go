package errors

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/NomadCrew/feedback-desk/logger"
)

type ErrorType string

const (
	ValidationError       ErrorType = "VALIDATION_ERROR"
	NotFoundError         ErrorType = "NOT_FOUND"
	AuthError             ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError         ErrorType = "DATABASE_ERROR"
	ServerError           ErrorType = "SERVER_ERROR"
	SubmissionError       ErrorType = "SUBMISSION_FAILED"
	RateLimitError        ErrorType = "RATE_LIMIT_EXCEEDED"
	InvalidStatusError    ErrorType = "INVALID_STATUS"
	ErrorTypeValidation             = "validation_failed"
	ErrorTypeInvalidField           = "invalid_fields"
)

// SubmissionFailedMessage is shown to submitters when a valid draft could not
// be accepted. The draft is kept so they can retry.
const SubmissionFailedMessage = "Failed to submit feedback. Please try again."

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType         `json:"type"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Detail     string            `json:"detail,omitempty"`
	Fields     map[string]string `json:"errors,omitempty"`
	HTTPStatus int               `json:"-"`
	Raw        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status to respond with, falling back to the
// status implied by the error type.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidFields reports per-field validation messages. Detail lists the
// offending field names in a stable order.
func InvalidFields(fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return &AppError{
		Type:       ValidationError,
		Code:       ErrorTypeInvalidField,
		Message:    "Validation failed",
		Detail:     "invalid fields: " + strings.Join(names, ", "),
		Fields:     fields,
		HTTPStatus: http.StatusBadRequest,
	}
}

func InvalidStatus(status string) *AppError {
	return &AppError{
		Type:       InvalidStatusError,
		Message:    "Invalid feedback status",
		Detail:     fmt.Sprintf("status %q must be one of: new, in-progress, resolved", status),
		HTTPStatus: http.StatusBadRequest,
	}
}

func SubmissionFailed(err error) *AppError {
	return &AppError{
		Type:       SubmissionError,
		Message:    SubmissionFailedMessage,
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func Unauthorized(code, message string) error {
	return NewError(AuthError, code, message, http.StatusUnauthorized)
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidStatusError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func NewError(errType ErrorType, code string, message string, status int) error {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}
