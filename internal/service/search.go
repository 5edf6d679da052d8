package service

import (
	"strings"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
)

const maxSuggestions = 6

// Suggestions scans the collection for subject and teacher names matching the
// query. An empty query yields nothing, results are deduplicated per
// (text, subject) pair and the list is capped so the dropdown stays short.
// Subject matches rank ahead of teacher matches.
func Suggestions(docs []models.Document, query string) []dto.Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []dto.Suggestion{}
	}

	type key struct {
		text    string
		subject string
	}
	seen := make(map[key]struct{})
	subjects := make([]dto.Suggestion, 0, maxSuggestions)
	teachers := make([]dto.Suggestion, 0, maxSuggestions)

	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.SubjectName), query) {
			k := key{text: doc.SubjectName, subject: doc.SubjectName}
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				subjects = append(subjects, dto.Suggestion{
					Text:               doc.SubjectName,
					Kind:               dto.SuggestionSubject,
					RelatedSubjectName: doc.SubjectName,
				})
			}
		}
		if doc.TeacherName != "" && strings.Contains(strings.ToLower(doc.TeacherName), query) {
			k := key{text: doc.TeacherName, subject: doc.SubjectName}
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				teachers = append(teachers, dto.Suggestion{
					Text:               doc.TeacherName,
					Kind:               dto.SuggestionTeacher,
					RelatedSubjectName: doc.SubjectName,
				})
			}
		}
	}

	merged := append(subjects, teachers...)
	if len(merged) > maxSuggestions {
		merged = merged[:maxSuggestions]
	}
	return merged
}

// FilterDepartments keeps the department views whose id or name contains the
// query. An empty query keeps everything; the result is never capped.
func FilterDepartments(views []dto.DepartmentView, query string) []dto.DepartmentView {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return views
	}
	kept := make([]dto.DepartmentView, 0, len(views))
	for _, view := range views {
		if strings.Contains(strings.ToLower(view.ID), query) ||
			strings.Contains(strings.ToLower(view.Name), query) {
			kept = append(kept, view)
		}
	}
	return kept
}

// FilterDocuments keeps the documents whose searchable text contains the
// query. An empty query keeps everything.
func FilterDocuments(docs []models.Document, query string) []models.Document {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return docs
	}
	kept := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.Contains(doc.SearchableText, query) {
			kept = append(kept, doc)
		}
	}
	return kept
}
