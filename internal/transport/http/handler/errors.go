package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/requestid"
)

// problemDetails is the error body every endpoint returns, RFC 7807 style.
type problemDetails struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// respondError maps domain errors onto status codes: bad parameters and bad
// URLs are the caller's fault, missing rows are 404, everything else is a
// 500 that only leaks the trace id.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	traceID := requestid.FromContext(c.Request.Context())

	var invalid *domain.InvalidParamsError
	var notFound *domain.JobNotFoundError
	switch {
	case errors.As(err, &invalid), errors.Is(err, domain.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, problemDetails{
			Type:    "about:blank",
			Title:   "Bad Request",
			Detail:  err.Error(),
			TraceID: traceID,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, problemDetails{
			Type:    "about:blank",
			Title:   "Not Found",
			Detail:  err.Error(),
			TraceID: traceID,
		})
	default:
		logger.Error("request failed", "error", err, "trace_id", traceID)
		c.JSON(http.StatusInternalServerError, problemDetails{
			Type:    "about:blank",
			Title:   "Internal Server Error",
			TraceID: traceID,
		})
	}
}

func respondNotFound(c *gin.Context, detail string) {
	c.JSON(http.StatusNotFound, problemDetails{
		Type:    "about:blank",
		Title:   "Not Found",
		Detail:  detail,
		TraceID: requestid.FromContext(c.Request.Context()),
	})
}
