package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

func doc(dept string, deptOrder int, subject string, subjectOrder int, teacher string, lectureOrder int, owner string, uploaded time.Time) models.Document {
	return models.Document{
		ID:              dept + subject + owner + uploaded.String(),
		OwnerID:         owner,
		FileName:        "notes.pdf",
		Department:      dept,
		SubjectName:     subject,
		TeacherName:     teacher,
		LectureLabel:    strconv.Itoa(lectureOrder),
		DepartmentOrder: deptOrder,
		SubjectOrder:    subjectOrder,
		LectureOrder:    lectureOrder,
		UploadedAt:      uploaded,
	}
}

func labDoc(dept string, deptOrder int, subject string, subjectOrder int, teacher string, labNumber int, owner string, uploaded time.Time) models.Document {
	d := doc(dept, deptOrder, subject, subjectOrder, teacher, 48+labNumber, owner, uploaded)
	d.LectureLabel = strconv.Itoa(labNumber) + "(Lab)"
	return d
}

func viewFixture() []models.Document {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return []models.Document{
		doc("BSIT-7th", 11, "Machine Learning", 2, "Dr. Sana Tariq", 3, "user-2", base.Add(48*time.Hour)),
		doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 7, "user-1", base),
		doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 2, "user-2", base.Add(time.Hour)),
		doc("BSCS-1st", 5, "Programming Fundamentals", 1, "Mr. Adeel Raza", 1, "user-1", base.Add(2*time.Hour)),
		doc("BSAI-1st", 2, "Intro to AI", 1, "Dr. Maria Shah", 1, "user-3", base.Add(-24*time.Hour)),
	}
}

func TestUniqueDepartmentsRankOrder(t *testing.T) {
	views := UniqueDepartments(viewFixture())
	require.Len(t, views, 3)
	require.Equal(t, "BSAI-1st", views[0].ID)
	require.Equal(t, "BSCS-1st", views[1].ID)
	require.Equal(t, "BSIT-7th", views[2].ID)
	require.Equal(t, 3, views[1].FileCount)
	require.NotNil(t, views[1].LatestDate)
}

func TestUniqueDepartmentsEmptyCollection(t *testing.T) {
	require.Empty(t, UniqueDepartments(nil))
}

func TestUniqueDepartmentsUnrankedLast(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	docs := []models.Document{
		doc("LEGACY-X", 0, "Old Course", 0, "", 1, "user-1", base),
		doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 7, "user-1", base),
		doc("LEGACY-A", 0, "Older Course", 0, "", 1, "user-1", base),
	}
	views := UniqueDepartments(docs)
	require.Len(t, views, 3)
	require.Equal(t, "BSCS-1st", views[0].ID)
	require.Equal(t, "LEGACY-A", views[1].ID)
	require.Equal(t, "LEGACY-X", views[2].ID)
}

func TestUniqueDepartmentsShuffleInvariant(t *testing.T) {
	docs := viewFixture()
	want := UniqueDepartments(docs)

	reversed := make([]models.Document, len(docs))
	for i, d := range docs {
		reversed[len(docs)-1-i] = d
	}
	require.Equal(t, want, UniqueDepartments(reversed))

	rotated := append(append([]models.Document{}, docs[2:]...), docs[:2]...)
	require.Equal(t, want, UniqueDepartments(rotated))
}

func TestSubjectsInDepartmentGrouping(t *testing.T) {
	groups := SubjectsInDepartment(viewFixture(), "BSCS-1st")
	require.Len(t, groups, 2)
	require.Equal(t, "Programming Fundamentals", groups[0].Name, "subject rank orders the groups")
	require.Equal(t, "Data Structures", groups[1].Name)
	require.Equal(t, "Dr. Khalid Mehmood", groups[1].Teacher)
	require.Equal(t, 2, groups[1].FileCount)
	require.Equal(t, []int{2, 7}, groups[1].LectureNumbers)
	require.Equal(t, []string{"user-1", "user-2"}, groups[1].UploaderIDs)
}

func TestSubjectsInUnknownDepartment(t *testing.T) {
	require.Empty(t, SubjectsInDepartment(viewFixture(), "BSSE-3rd"))
}

func TestSubjectsInDepartmentExcludesLabLabelsFromNumbers(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	docs := []models.Document{
		doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 7, "user-1", base),
		labDoc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 3, "user-1", base.Add(time.Hour)),
	}
	groups := SubjectsInDepartment(docs, "BSCS-1st")
	require.Len(t, groups, 1)
	require.Equal(t, 2, groups[0].FileCount, "the lab still counts as a file")
	require.Equal(t, []int{7}, groups[0].LectureNumbers, "lab labels stay out of the numeric range")
}

func TestLecturesInSubjectOrdering(t *testing.T) {
	docs := viewFixture()
	groups := LecturesInSubject(docs, "BSCS-1st", "Data Structures")
	require.Len(t, groups, 2)
	require.Equal(t, 2, groups[0].Number)
	require.Equal(t, 7, groups[1].Number)
	require.Len(t, groups[0].Documents, 1)
}

func TestLecturesInSubjectGroupsLabWithItsLecture(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	docs := []models.Document{
		labDoc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 3, "user-2", base.Add(time.Hour)),
		doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 3, "user-1", base),
	}
	groups := LecturesInSubject(docs, "BSCS-1st", "Data Structures")
	require.Len(t, groups, 1, "the lab shares its lecture's group")
	require.Equal(t, 3, groups[0].Number)
	require.Len(t, groups[0].Documents, 2)
	require.Equal(t, "user-1", groups[0].Documents[0].OwnerID, "the lecture precedes its lab")
	require.Equal(t, "user-2", groups[0].Documents[1].OwnerID)
}

func TestDepartmentStats(t *testing.T) {
	stats := DepartmentStats(viewFixture())
	require.Equal(t, 5, stats.TotalFiles)
	require.Equal(t, 4, stats.TotalSubjects)
	require.Equal(t, 3, stats.TotalDepartments)
	require.Equal(t, 3, stats.FilesPerDept["BSCS-1st"])
	require.NotNil(t, stats.LatestPerDept["BSIT-7th"])
}

func TestDepartmentStatsCountsSubjectOnceAcrossDepartments(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	docs := []models.Document{
		doc("BSCS-1st", 5, "Programming Fundamentals", 1, "Mr. Adeel Raza", 1, "user-1", base),
		doc("BSIT-1st", 10, "Programming Fundamentals", 2, "Ms. Hina Aslam", 1, "user-2", base),
	}
	stats := DepartmentStats(docs)
	require.Equal(t, 2, stats.TotalFiles)
	require.Equal(t, 2, stats.TotalDepartments)
	require.Equal(t, 1, stats.TotalSubjects)
}

func TestLatestDateForDepartment(t *testing.T) {
	docs := viewFixture()
	latest := LatestDateForDepartment(docs, "BSCS-1st")
	require.NotNil(t, latest)
	require.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), *latest)
	require.Nil(t, LatestDateForDepartment(docs, "BSSE-3rd"))
}

func TestLatestDatePrefersUpdatedTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	updated := base.Add(72 * time.Hour)
	d := doc("BSCS-1st", 5, "Data Structures", 3, "Dr. Khalid Mehmood", 7, "user-1", base)
	d.UpdatedAt = &updated
	latest := LatestDateForDepartment([]models.Document{d}, "BSCS-1st")
	require.NotNil(t, latest)
	require.Equal(t, updated, *latest)
}
