package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"goaltrack/internal/llm"
	"goaltrack/internal/report"
)

// Goal and report endpoints answer with a {success, data|error} envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"message": message}})
}

// respondServiceError maps service errors to HTTP statuses. Generation
// failures and timeouts are distinguished so clients know a retry can help.
func respondServiceError(c *gin.Context, err error) {
	var pre *report.PreconditionError
	var gen *llm.GenerationError
	switch {
	case errors.Is(err, report.ErrGoalNotFound), errors.Is(err, report.ErrReportNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, report.ErrEmptyMemo):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &pre):
		respondError(c, http.StatusBadRequest, pre.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "AI analysis timed out, please try again later")
	case errors.As(err, &gen):
		respondError(c, http.StatusBadGateway, gen.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
