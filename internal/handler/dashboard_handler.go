package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/service"
	"github.com/studyshelf/studyshelf-api/pkg/response"
)

type dashboardService interface {
	Departments(ctx context.Context) ([]dto.DepartmentView, error)
	Subjects(ctx context.Context, department string) ([]dto.SubjectGroup, error)
	Lectures(ctx context.Context, department, subject string) ([]dto.LectureGroup, error)
	Stats(ctx context.Context) (*dto.DashboardStats, error)
	Suggest(ctx context.Context, query string) ([]dto.Suggestion, error)
	Export(ctx context.Context, format string) ([]byte, string, string, error)
}

// DashboardHandler serves the browsing and search endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Departments godoc
// @Summary List departments holding documents
// @Tags Dashboard
// @Produce json
// @Param q query string false "Optional name filter"
// @Success 200 {object} response.Envelope
// @Router /dashboard/departments [get]
func (h *DashboardHandler) Departments(c *gin.Context) {
	views, err := h.service.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		views = service.FilterDepartments(views, q)
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Subjects godoc
// @Summary List subject groups of a department
// @Tags Dashboard
// @Produce json
// @Param department path string true "Department id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/departments/{department}/subjects [get]
func (h *DashboardHandler) Subjects(c *gin.Context) {
	groups, err := h.service.Subjects(c.Request.Context(), c.Param("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Lectures godoc
// @Summary List lecture groups of a subject
// @Tags Dashboard
// @Produce json
// @Param department path string true "Department id"
// @Param subject path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/departments/{department}/subjects/{subject}/lectures [get]
func (h *DashboardHandler) Lectures(c *gin.Context) {
	groups, err := h.service.Lectures(c.Request.Context(), c.Param("department"), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Stats godoc
// @Summary Collection-wide statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Suggestions godoc
// @Summary Search suggestions for subjects and teachers
// @Tags Dashboard
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} response.Envelope
// @Router /dashboard/suggestions [get]
func (h *DashboardHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.service.Suggest(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Export godoc
// @Summary Export the catalogue as CSV or PDF
// @Tags Dashboard
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /dashboard/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	payload, contentType, filename, err := h.service.Export(c.Request.Context(), strings.ToLower(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, contentType, payload)
}
