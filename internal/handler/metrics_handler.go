package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyshelf/studyshelf-api/internal/service"
	"github.com/studyshelf/studyshelf-api/pkg/response"
)

// MetricsHandler exposes the aggregate metrics snapshot.
type MetricsHandler struct {
	service *service.MetricsService
}

// NewMetricsHandler constructs the handler.
func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// Snapshot godoc
// @Summary Aggregated runtime metrics
// @Tags Ops
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ops/metrics [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Snapshot(), nil)
}
