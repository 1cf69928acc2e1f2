package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/middleware"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/models/feedback/validation"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func setupFeedbackRouter(svc *MockFeedbackService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	h := NewFeedbackHandler(svc)
	r.POST("/v1/feedback", h.SubmitFeedback)
	r.GET("/v1/feedback", h.ListFeedback)
	r.GET("/v1/feedback/stats", h.GetStats)
	r.GET("/v1/feedback/:id", h.GetFeedback)
	r.PATCH("/v1/feedback/:id/status", h.UpdateStatus)
	r.DELETE("/v1/feedback/:id", h.DeleteFeedback)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleFeedback() *types.Feedback {
	return &types.Feedback{
		ID:        "fb-1",
		Name:      "Ann",
		Email:     "ann@x.com",
		Subject:   "Hi",
		Message:   "This is a test message",
		Rating:    4,
		Category:  types.FeedbackCategoryProduct,
		Status:    types.FeedbackStatusNew,
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestSubmitFeedback(t *testing.T) {
	draft := types.FeedbackDraft{
		Name:     "Ann",
		Email:    "ann@x.com",
		Subject:  "Hi",
		Message:  "This is a test message",
		Rating:   4,
		Category: types.FeedbackCategoryProduct,
	}

	t.Run("accepted", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("Submit", mock.Anything, draft).Return(submission.Result{
			Outcome: submission.OutcomeAccepted,
			Record:  sampleFeedback(),
		})

		w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/v1/feedback", draft)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool           `json:"success"`
			Data    types.Feedback `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "fb-1", resp.Data.ID)
		assert.Equal(t, types.FeedbackStatusNew, resp.Data.Status)
		svc.AssertExpectations(t)
	})

	t.Run("invalid fields", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("Submit", mock.Anything, mock.Anything).Return(submission.Result{
			Outcome: submission.OutcomeInvalid,
			Errors: validation.FieldErrors{
				"email":  "Email is required",
				"rating": "Please provide a rating",
			},
		})

		w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/v1/feedback", types.FeedbackDraft{Name: "Ann"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp types.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Type)
		assert.Equal(t, map[string]string{
			"email":  "Email is required",
			"rating": "Please provide a rating",
		}, resp.Errors)
	})

	t.Run("sink failure", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("Submit", mock.Anything, draft).Return(submission.Result{
			Outcome: submission.OutcomeFailed,
			Err:     apperrors.SubmissionFailed(errors.New("store unavailable")),
		})

		w := doJSON(setupFeedbackRouter(svc), http.MethodPost, "/v1/feedback", draft)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp types.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.SubmissionFailedMessage, resp.Message)
		assert.NotContains(t, w.Body.String(), "store unavailable")
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockFeedbackService)
		r := setupFeedbackRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/feedback", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})
}

func TestListFeedback(t *testing.T) {
	svc := new(MockFeedbackService)
	filter := types.FeedbackFilter{Search: "ann", Status: "all", Category: "product"}
	svc.On("ListFeedback", mock.Anything, filter).Return([]*types.Feedback{sampleFeedback()}, nil)

	w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/v1/feedback?search=ann&status=all&category=product", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool             `json:"success"`
		Data    []types.Feedback `json:"data"`
		Meta    types.MetaInfo   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ann", resp.Data[0].Name)
	require.NotNil(t, resp.Meta.Count)
	assert.Equal(t, 1, *resp.Meta.Count)
	svc.AssertExpectations(t)
}

func TestListFeedback_StoreError(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("ListFeedback", mock.Anything, types.FeedbackFilter{}).
		Return(nil, apperrors.NewDatabaseError(errors.New("connection refused")))

	w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/v1/feedback", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetFeedback(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		fb         *types.Feedback
		err        error
		wantStatus int
	}{
		{"found", "fb-1", sampleFeedback(), nil, http.StatusOK},
		{"unknown id", "missing", nil, apperrors.NotFound("Feedback", "missing"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockFeedbackService)
			if tt.fb != nil {
				svc.On("GetFeedback", mock.Anything, tt.id).Return(tt.fb, nil)
			} else {
				svc.On("GetFeedback", mock.Anything, tt.id).Return(nil, tt.err)
			}

			w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/v1/feedback/"+tt.id, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestGetStats(t *testing.T) {
	svc := new(MockFeedbackService)
	svc.On("FeedbackStats", mock.Anything).Return(types.NewFeedbackStats(3, 1, 1, 1, 11), nil)

	w := doJSON(setupFeedbackRouter(svc), http.MethodGet, "/v1/feedback/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data types.FeedbackStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 3.7, resp.Data.AvgRating)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc := new(MockFeedbackService)
		updated := sampleFeedback()
		updated.Status = types.FeedbackStatusResolved
		svc.On("UpdateStatus", mock.Anything, "fb-1", types.FeedbackStatusResolved).Return(updated, nil)

		w := doJSON(setupFeedbackRouter(svc), http.MethodPatch, "/v1/feedback/fb-1/status",
			types.FeedbackStatusUpdate{Status: types.FeedbackStatusResolved})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"resolved"`)
		svc.AssertExpectations(t)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("UpdateStatus", mock.Anything, "fb-1", types.FeedbackStatus("archived")).
			Return(nil, apperrors.InvalidStatus("archived"))

		w := doJSON(setupFeedbackRouter(svc), http.MethodPatch, "/v1/feedback/fb-1/status",
			map[string]string{"status": "archived"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp types.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_STATUS", resp.Type)
	})

	t.Run("missing status", func(t *testing.T) {
		svc := new(MockFeedbackService)

		w := doJSON(setupFeedbackRouter(svc), http.MethodPatch, "/v1/feedback/fb-1/status", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("UpdateStatus", mock.Anything, "missing", types.FeedbackStatusResolved).
			Return(nil, apperrors.NotFound("Feedback", "missing"))

		w := doJSON(setupFeedbackRouter(svc), http.MethodPatch, "/v1/feedback/missing/status",
			types.FeedbackStatusUpdate{Status: types.FeedbackStatusResolved})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteFeedback(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("DeleteFeedback", mock.Anything, "fb-1").Return(nil)

		w := doJSON(setupFeedbackRouter(svc), http.MethodDelete, "/v1/feedback/fb-1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := new(MockFeedbackService)
		svc.On("DeleteFeedback", mock.Anything, "missing").Return(apperrors.NotFound("Feedback", "missing"))

		w := doJSON(setupFeedbackRouter(svc), http.MethodDelete, "/v1/feedback/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
