package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
)

func searchFixture() []models.Document {
	return []models.Document{
		{SubjectName: "Data Structures", TeacherName: "Dr. Khalid Mehmood", SearchableText: "bscs-1st data structures dr. khalid mehmood lecture 7"},
		{SubjectName: "Data Structures", TeacherName: "Dr. Khalid Mehmood", SearchableText: "bscs-1st data structures dr. khalid mehmood lab 3"},
		{SubjectName: "Database Systems", TeacherName: "Ms. Hina Aslam", SearchableText: "bscs-3rd database systems ms. hina aslam lecture 1"},
		{SubjectName: "Machine Learning", TeacherName: "Dr. Sana Tariq", SearchableText: "bsit-7th machine learning dr. sana tariq lecture 3"},
	}
}

func TestSuggestionsEmptyQuery(t *testing.T) {
	require.Empty(t, Suggestions(searchFixture(), ""))
	require.Empty(t, Suggestions(searchFixture(), "   "))
}

func TestSuggestionsDeduplicates(t *testing.T) {
	got := Suggestions(searchFixture(), "data")
	require.Len(t, got, 2)
	require.Equal(t, "Data Structures", got[0].Text)
	require.Equal(t, dto.SuggestionSubject, got[0].Kind)
	require.Equal(t, "Database Systems", got[1].Text)
}

func TestSuggestionsSubjectsBeforeTeachers(t *testing.T) {
	got := Suggestions(searchFixture(), "a")
	require.NotEmpty(t, got)
	sawTeacher := false
	for _, s := range got {
		if s.Kind == dto.SuggestionTeacher {
			sawTeacher = true
		} else {
			require.False(t, sawTeacher, "subject suggestions must precede teacher suggestions")
		}
	}
}

func TestSuggestionsTeacherCarriesSubject(t *testing.T) {
	got := Suggestions(searchFixture(), "khalid")
	require.Len(t, got, 1)
	require.Equal(t, dto.SuggestionTeacher, got[0].Kind)
	require.Equal(t, "Dr. Khalid Mehmood", got[0].Text)
	require.Equal(t, "Data Structures", got[0].RelatedSubjectName)
}

func TestSuggestionsCap(t *testing.T) {
	docs := make([]models.Document, 0, 10)
	for i := 0; i < 10; i++ {
		docs = append(docs, models.Document{
			SubjectName: fmt.Sprintf("Algorithms %d", i),
			TeacherName: fmt.Sprintf("Dr. Algo %d", i),
		})
	}
	got := Suggestions(docs, "algo")
	require.Len(t, got, 6)
}

func TestFilterDepartments(t *testing.T) {
	views := []dto.DepartmentView{
		{ID: "BSCS-1st", Name: "BS Computer Science (1st)"},
		{ID: "BSCS-3rd", Name: "BS Computer Science (3rd)"},
		{ID: "BSIT-7th", Name: "BS Information Technology (7th)"},
	}
	require.Len(t, FilterDepartments(views, ""), 3)
	require.Len(t, FilterDepartments(views, "bscs"), 2)

	got := FilterDepartments(views, "information")
	require.Len(t, got, 1)
	require.Equal(t, "BSIT-7th", got[0].ID)

	require.Empty(t, FilterDepartments(views, "chemistry"))
}

func TestFilterDocuments(t *testing.T) {
	docs := searchFixture()
	require.Len(t, FilterDocuments(docs, ""), 4)
	require.Len(t, FilterDocuments(docs, "khalid"), 2)
	require.Len(t, FilterDocuments(docs, "Machine"), 1)
	require.Empty(t, FilterDocuments(docs, "chemistry"))
}
