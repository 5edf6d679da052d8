package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
	"github.com/studyshelf/studyshelf-api/internal/service"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
	"github.com/studyshelf/studyshelf-api/pkg/response"
)

type documentService interface {
	Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload service.DocumentUpload, actor *models.JWTClaims) (*models.Document, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Document, error)
	List(ctx context.Context, filter dto.DocumentListFilter, actor *models.JWTClaims) ([]models.Document, *models.Pagination, error)
	GetDownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (string, error)
	Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*service.DocumentDownload, error)
	Delete(ctx context.Context, ids []string, actor *models.JWTClaims) (int64, error)
}

// DocumentHandler manages lecture document HTTP endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload godoc
// @Summary Upload a lecture file
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param department formData string true "Department id"
// @Param subject formData string true "Subject name with optional teacher suffix"
// @Param lecture formData string true "Lecture label, 1-48 or N(Lab)"
// @Param file formData file true "Lecture file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid upload payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}

	upload := service.DocumentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  reader,
	}
	doc, err := h.service.Upload(c.Request.Context(), req, upload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, doc, nil)
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Param department query string false "Department filter"
// @Param subject query string false "Subject filter"
// @Param lecture query string false "Lecture label filter"
// @Param mine query bool false "Only own uploads"
// @Param search query string false "Search term"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := dto.DocumentListFilter{
		Department:  strings.TrimSpace(c.Query("department")),
		SubjectName: strings.TrimSpace(c.Query("subject")),
		LectureNum:  strings.TrimSpace(c.Query("lecture")),
		Search:      strings.TrimSpace(c.Query("search")),
	}
	if mine, _ := strconv.ParseBool(c.Query("mine")); mine {
		filter.OwnerID = claims.UserID
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	docs, pagination, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Get document metadata with a signed download link
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	downloadURL, err := h.service.GetDownloadURL(c.Request.Context(), doc.ID, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DocumentResponse{
		Document:    *doc,
		DownloadURL: downloadURL,
	}, nil)
}

// Download godoc
// @Summary Download a lecture file via signed token
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	// The signed token authorizes the download; identity is only used to
	// attribute the activity entry when present.
	claims := claimsFromContext(c)
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.Download(c.Request.Context(), c.Param("id"), token, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}

// Delete godoc
// @Summary Delete a batch of owned documents
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.DeleteDocumentsRequest true "Document ids"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DeleteDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document ids required"))
		return
	}
	affected, err := h.service.Delete(c.Request.Context(), req.IDs, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteDocumentsResponse{
		Deleted:   int(affected),
		DeletedAt: time.Now().UTC(),
	}, nil)
}
