package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/repository"
)

type InstanceHandler struct {
	instances repository.InstanceRepository
	logger    *slog.Logger
}

func NewInstanceHandler(instances repository.InstanceRepository, logger *slog.Logger) *InstanceHandler {
	return &InstanceHandler{
		instances: instances,
		logger:    logger.With("component", "instance_handler"),
	}
}

func (h *InstanceHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 100)

	rows, err := h.instances.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if rows == nil {
		rows = []domain.InstanceRow{}
	}
	c.JSON(http.StatusOK, rows)
}
