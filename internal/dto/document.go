package dto

import (
	"time"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

// UploadDocumentRequest carries the multipart form fields of an upload.
type UploadDocumentRequest struct {
	Department   string `form:"department" validate:"required"`
	SubjectName  string `form:"subject" validate:"required"`
	LectureLabel string `form:"lecture" validate:"required"`
}

// DocumentResponse decorates a document row with its signed download link.
type DocumentResponse struct {
	models.Document
	DownloadURL string `json:"download_url,omitempty"`
}

// DocumentListFilter captures listing query parameters.
type DocumentListFilter struct {
	Department  string
	SubjectName string
	LectureNum  string
	OwnerID     string
	Search      string
	Page        int
	PageSize    int
}

// DeleteDocumentsRequest removes a batch of owned documents.
type DeleteDocumentsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// DeleteDocumentsResponse reports how many rows were removed.
type DeleteDocumentsResponse struct {
	Deleted   int       `json:"deleted"`
	DeletedAt time.Time `json:"deleted_at"`
}
