package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as a
// types.ErrorResponse.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := types.ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Code:    strconv.Itoa(statusCode),
				Errors:  appError.Fields,
			}
			// Only include details for client errors or in debug mode
			if appError.Detail != "" && (gin.IsDebugging() || statusCode < http.StatusInternalServerError) {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")

			response := types.ErrorResponse{
				Type:    string(errors.ValidationError),
				Message: "Failed to bind request",
				Code:    strconv.Itoa(http.StatusBadRequest),
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")

		response := types.ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal Server Error",
			Code:    strconv.Itoa(http.StatusInternalServerError),
		}
		if gin.IsDebugging() {
			response.Details = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}
