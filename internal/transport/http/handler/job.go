package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/repository"
)

type JobHandler struct {
	queue   repository.QueueRepository
	history repository.HistoryRepository
	logger  *slog.Logger
}

func NewJobHandler(queue repository.QueueRepository, history repository.HistoryRepository, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		queue:   queue,
		history: history,
		logger:  logger.With("component", "job_handler"),
	}
}

func (h *JobHandler) GetByID(c *gin.Context) {
	jobID, ok := paramJobID(c)
	if !ok {
		return
	}

	job, err := h.queue.GetByID(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if job == nil {
		respondNotFound(c, "job not found")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	jobID, ok := paramJobID(c)
	if !ok {
		return
	}

	deleted, err := h.queue.Delete(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if deleted == 0 {
		respondNotFound(c, "job not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) History(c *gin.Context) {
	jobID, ok := paramJobID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 100)

	rows, err := h.history.ListByJobID(c.Request.Context(), jobID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = []domain.HistoryRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func paramJobID(c *gin.Context) (int64, bool) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, problemDetails{
			Type:   "about:blank",
			Title:  "Bad Request",
			Detail: "job id must be an integer",
		})
		return 0, false
	}
	return jobID, true
}

func pagination(c *gin.Context, defaultLimit int32) (int32, int32) {
	limit := defaultLimit
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	var offset int32
	if v, err := strconv.ParseInt(c.Query("offset"), 10, 32); err == nil && v > 0 {
		offset = int32(v)
	}
	return limit, offset
}
