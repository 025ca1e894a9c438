package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/repository"
)

type ResultHandler struct {
	results repository.ResultRepository
	logger  *slog.Logger
}

func NewResultHandler(results repository.ResultRepository, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{
		results: results,
		logger:  logger.With("component", "result_handler"),
	}
}

// GetByID returns the stored result as JSON: variant meta, captured headers
// and the base64-encoded body.
func (h *ResultHandler) GetByID(c *gin.Context) {
	result, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// Raw replays the upstream response: its status code, its content-* headers
// and its body, verbatim. Results without an HTTP response render as
// 204 No Content.
func (h *ResultHandler) Raw(c *gin.Context) {
	result, ok := h.load(c)
	if !ok {
		return
	}
	if result.Meta.Result != domain.ResultHTTP {
		c.Status(http.StatusNoContent)
		return
	}

	contentType := ""
	for name, value := range result.Headers {
		if !strings.HasPrefix(strings.ToLower(name), "content") {
			continue
		}
		if strings.EqualFold(name, "content-type") {
			contentType = value
			continue
		}
		c.Header(name, value)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(result.Meta.StatusCode, contentType, result.Body)
}

func (h *ResultHandler) load(c *gin.Context) (*domain.JobResult, bool) {
	jobID, ok := paramJobID(c)
	if !ok {
		return nil, false
	}

	result, err := h.results.GetByID(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	if result == nil {
		respondNotFound(c, "result not found")
		return nil, false
	}
	return result, true
}
