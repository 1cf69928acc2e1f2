package handlers

import (
	"net/http"
	"time"

	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/models/feedback/service"
	"github.com/NomadCrew/feedback-desk/models/feedback/submission"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler serves the public submission endpoint and the staff
// management endpoints.
type FeedbackHandler struct {
	feedbackService service.FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService service.FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback godoc
// @Summary      Submit feedback
// @Description  Validates a feedback draft and stores it with status "new"
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      types.FeedbackDraft  true  "Feedback draft"
// @Success      201   {object}  types.StandardResponse{data=types.Feedback}
// @Failure      400   {object}  types.ErrorResponse
// @Failure      429   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /feedback [post]
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var draft types.FeedbackDraft
	if !bindJSONOrError(c, &draft) {
		return
	}

	result := h.feedbackService.Submit(c.Request.Context(), draft)
	switch result.Outcome {
	case submission.OutcomeAccepted:
		c.JSON(http.StatusCreated, types.StandardResponse{
			Success: true,
			Data:    result.Record,
		})
	case submission.OutcomeInvalid:
		_ = c.Error(apperrors.InvalidFields(result.Errors))
	default:
		_ = c.Error(result.Err)
	}
}

// ListFeedback godoc
// @Summary      List feedback
// @Description  Lists feedback in insertion order, narrowed by search, status and category
// @Tags         feedback
// @Produce      json
// @Param        search    query     string  false  "Case-insensitive match on name, email or subject"
// @Param        status    query     string  false  "Status or \"all\""
// @Param        category  query     string  false  "Category or \"all\""
// @Success      200       {object}  types.StandardResponse{data=[]types.Feedback}
// @Failure      401       {object}  types.ErrorResponse
// @Failure      500       {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	var filter types.FeedbackFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_query", err.Error()))
		return
	}

	list, err := h.feedbackService.ListFeedback(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	count := len(list)
	c.JSON(http.StatusOK, types.StandardResponse{
		Success: true,
		Data:    list,
		Meta: &types.MetaInfo{
			RequestID: c.GetString("request_id"),
			Timestamp: time.Now().UTC(),
			Count:     &count,
		},
	})
}

// GetFeedback godoc
// @Summary      Get feedback
// @Tags         feedback
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  types.StandardResponse{data=types.Feedback}
// @Failure      401  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id} [get]
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	fb, err := h.feedbackService.GetFeedback(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.StandardResponse{Success: true, Data: fb})
}

// GetStats godoc
// @Summary      Feedback statistics
// @Description  Counts per status and the average rating over the whole collection
// @Tags         feedback
// @Produce      json
// @Success      200  {object}  types.StandardResponse{data=types.FeedbackStats}
// @Failure      401  {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/stats [get]
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	stats, err := h.feedbackService.FeedbackStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.StandardResponse{Success: true, Data: stats})
}

// UpdateStatus godoc
// @Summary      Change feedback status
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "Feedback ID"
// @Param        body  body      types.FeedbackStatusUpdate  true  "New status"
// @Success      200   {object}  types.StandardResponse{data=types.Feedback}
// @Failure      400   {object}  types.ErrorResponse
// @Failure      401   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id}/status [patch]
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	var req types.FeedbackStatusUpdate
	if !bindJSONOrError(c, &req) {
		return
	}

	fb, err := h.feedbackService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.StandardResponse{Success: true, Data: fb})
}

// DeleteFeedback godoc
// @Summary      Delete feedback
// @Tags         feedback
// @Param        id   path  string  true  "Feedback ID"
// @Success      204
// @Failure      401  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/{id} [delete]
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}
