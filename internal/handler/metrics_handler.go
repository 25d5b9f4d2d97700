package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lifelink-dev/bloodlink-api/internal/service"
	"github.com/lifelink-dev/bloodlink-api/pkg/response"
)

// MetricsHandler exposes the runtime metrics snapshot.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot godoc
// @Summary Runtime metrics snapshot
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ops/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
