package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Error sends a JSON error response.
// AppErrors keep their status and message; anything else is logged and reported as 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.WarnContext(c.Request.Context(), "request failed",
				"path", c.FullPath(), "status", appErr.Code, "err", err)
		}
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Retryable: appErr.Retryable})
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a binding or validation failure.
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}
