package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/feed"
	"github.com/studyshelf/studyshelf-api/internal/models"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
	"github.com/studyshelf/studyshelf-api/pkg/response"
)

type activityService interface {
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
	RecordForActor(actor *models.JWTClaims, req dto.RecordActivityRequest) error
}

// ActivityHandler serves the activity feed endpoints.
type ActivityHandler struct {
	service activityService
	hub     *feed.Hub
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service activityService, hub *feed.Hub) *ActivityHandler {
	return &ActivityHandler{service: service, hub: hub}
}

// Recent godoc
// @Summary Recent activity entries
// @Tags Activity
// @Produce json
// @Param limit query int false "Max entries, capped at 50"
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Record godoc
// @Summary Record an activity entry
// @Tags Activity
// @Accept json
// @Produce json
// @Param payload body dto.RecordActivityRequest true "Activity payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activity [post]
func (h *ActivityHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activity payload"))
		return
	}
	if err := h.service.RecordForActor(claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}

// Stream godoc
// @Summary Live activity feed over server-sent events
// @Tags Activity
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /activity/stream [get]
func (h *ActivityHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "activity feed not configured"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	entries, cancel := h.hub.Subscribe()
	defer cancel()

	// New clients start from the buffered history, newest first.
	for _, entry := range h.hub.Snapshot() {
		c.SSEvent("activity", entry)
	}
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case entry, ok := <-entries:
			if !ok {
				return false
			}
			c.SSEvent("activity", entry)
			return true
		}
	})
}
