package models

import (
	"time"

	"github.com/lib/pq"
)

// Document is the metadata row persisted for every uploaded lecture file.
// Rows are created on upload, never updated by this codebase, and deleted
// only by their owner. The three order fields together with FullSequence
// nest any document set into department → subject → lecture order.
type Document struct {
	ID      string `db:"id" json:"id"`
	OwnerID string `db:"owner_id" json:"owner_id"`

	FileName string `db:"file_name" json:"file_name"`
	FilePath string `db:"file_path" json:"file_path"`
	FileSize int64  `db:"file_size" json:"file_size"`
	MimeType string `db:"mime_type" json:"mime_type"`

	Department   string `db:"department" json:"department"`
	SubjectName  string `db:"subject_name" json:"subject_name"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	LectureLabel string `db:"lecture_label" json:"lecture_label"`

	DepartmentOrder int    `db:"department_order" json:"department_order"`
	SubjectOrder    int    `db:"subject_order" json:"subject_order"`
	LectureOrder    int    `db:"lecture_order" json:"lecture_order"`
	FullSequence    string `db:"full_sequence" json:"full_sequence"`

	Tags           pq.StringArray `db:"tags" json:"tags"`
	SearchableText string         `db:"searchable_text" json:"searchable_text"`

	PublicURL  string     `db:"public_url" json:"public_url"`
	UploadedAt time.Time  `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// LastTouched returns the update timestamp when present, the upload
// timestamp otherwise.
func (d Document) LastTouched() time.Time {
	if d.UpdatedAt != nil {
		return *d.UpdatedAt
	}
	return d.UploadedAt
}

// DocumentFilter captures listing criteria for document queries.
type DocumentFilter struct {
	Department  string
	SubjectName string
	LectureNum  string
	OwnerID     string
	Search      string
	Limit       int
	Offset      int
}
