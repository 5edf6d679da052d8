package dto

import (
	"time"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

// DepartmentView is one entry of the ranked department list.
type DepartmentView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	FileCount  int        `json:"file_count"`
	LatestDate *time.Time `json:"latest_date,omitempty"`
}

// SubjectGroup summarises the documents of one subject inside a department.
type SubjectGroup struct {
	Name           string   `json:"name"`
	Teacher        string   `json:"teacher"`
	FileCount      int      `json:"file_count"`
	LectureNumbers []int    `json:"lecture_numbers"`
	UploaderIDs    []string `json:"uploader_ids"`
}

// LectureGroup bundles the documents of one numeric lecture slot.
type LectureGroup struct {
	Number    int               `json:"number"`
	Documents []models.Document `json:"documents"`
}

// DashboardStats aggregates collection-wide counters.
type DashboardStats struct {
	TotalFiles       int                   `json:"total_files"`
	TotalSubjects    int                   `json:"total_subjects"`
	TotalDepartments int                   `json:"total_departments"`
	FilesPerDept     map[string]int        `json:"files_per_department"`
	LatestPerDept    map[string]*time.Time `json:"latest_per_department"`
	GeneratedAt      time.Time             `json:"generated_at"`
}

// SuggestionKind tags a search suggestion with its origin.
type SuggestionKind string

const (
	SuggestionSubject SuggestionKind = "subject"
	SuggestionTeacher SuggestionKind = "teacher"
)

// Suggestion is a single ranked search suggestion.
type Suggestion struct {
	Text               string         `json:"text"`
	Kind               SuggestionKind `json:"kind"`
	RelatedSubjectName string         `json:"related_subject_name"`
}
