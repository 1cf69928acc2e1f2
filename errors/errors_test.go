package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Equal(t, "VALIDATION_ERROR: invalid input (field required)", err.Error())
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))

	assert.Nil(t, Wrap(nil, DatabaseError, "ignored"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Feedback", "abc")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Feedback not found", err.Message)
	assert.Equal(t, "ID: abc", err.Detail)
	assert.Equal(t, 404, err.GetHTTPStatus())
}

func TestInvalidFields(t *testing.T) {
	err := InvalidFields(map[string]string{
		"rating": "Please provide a rating",
		"email":  "Email is required",
	})

	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, ErrorTypeInvalidField, err.Code)
	assert.Equal(t, "invalid fields: email, rating", err.Detail)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestSubmissionFailed(t *testing.T) {
	cause := fmt.Errorf("store unavailable")
	err := SubmissionFailed(cause)

	assert.Equal(t, SubmissionFailedMessage, err.Message)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.True(t, stderrors.Is(err, cause))
}

func TestNewDatabaseError(t *testing.T) {
	originalErr := fmt.Errorf("connection failed")
	err := NewDatabaseError(originalErr)
	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, "Please try again later", err.Detail)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, originalErr, err.Raw)
}

func TestGetHTTPStatusFallback(t *testing.T) {
	err := &AppError{Type: RateLimitError}
	assert.Equal(t, 429, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, 500, err.GetHTTPStatus())
}
