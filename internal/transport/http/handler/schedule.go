package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/repository"
)

type ScheduleHandler struct {
	schedules repository.ScheduleRepository
	logger    *slog.Logger
}

func NewScheduleHandler(schedules repository.ScheduleRepository, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.With("component", "schedule_handler"),
	}
}

func (h *ScheduleHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 10)

	rows, err := h.schedules.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = []domain.ScheduleRow{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ScheduleHandler) GetByID(c *gin.Context) {
	row, err := h.schedules.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if row == nil {
		respondNotFound(c, "schedule not found")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete marks the schedule inactive; the pending occurrence still runs but
// no further ones are cloned.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	disabled, err := h.schedules.Disable(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if disabled == 0 {
		respondNotFound(c, "schedule not found")
		return
	}
	c.Status(http.StatusNoContent)
}
