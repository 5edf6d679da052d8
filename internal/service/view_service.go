package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/studyshelf/studyshelf-api/internal/catalog"
	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
)

// The view functions below are pure: they derive every dashboard projection
// from one fetched document slice without touching storage. Callers fetch
// once and slice the result as many ways as the page needs.

// lectureNumberOf reads the bare lecture number off a stored label, so a lab
// upload counts under the same number as its lecture. Labels are validated at
// upload; an unparsable legacy row falls back to its slot order.
func lectureNumberOf(doc models.Document) int {
	if n, err := catalog.LectureNumber(doc.LectureLabel); err == nil {
		return n
	}
	return doc.LectureOrder
}

// UniqueDepartments lists the departments that hold at least one document,
// in catalogue rank order, with per-department counts and freshness.
func UniqueDepartments(docs []models.Document) []dto.DepartmentView {
	type agg struct {
		order  int
		count  int
		latest time.Time
	}
	byDept := make(map[string]*agg)
	for _, doc := range docs {
		entry, ok := byDept[doc.Department]
		if !ok {
			entry = &agg{order: doc.DepartmentOrder}
			byDept[doc.Department] = entry
		}
		entry.count++
		if touched := doc.LastTouched(); touched.After(entry.latest) {
			entry.latest = touched
		}
	}

	views := make([]dto.DepartmentView, 0, len(byDept))
	for dept, entry := range byDept {
		view := dto.DepartmentView{ID: dept, Name: dept, FileCount: entry.count}
		if !entry.latest.IsZero() {
			latest := entry.latest
			view.LatestDate = &latest
		}
		views = append(views, view)
	}
	// Unranked departments (order 0) trail the ranked ones; name breaks ties
	// so the listing is identical however the input slice was ordered.
	sort.SliceStable(views, func(i, j int) bool {
		oi, oj := byDept[views[i].ID].order, byDept[views[j].ID].order
		if oi != oj {
			if oi == 0 {
				return false
			}
			if oj == 0 {
				return true
			}
			return oi < oj
		}
		return views[i].ID < views[j].ID
	})
	return views
}

// SubjectsInDepartment groups a department's documents by subject, ordered by
// subject rank. Lecture numbers are unique and ascending per group; only plain
// numeric labels feed the range, lab-suffixed uploads stay out of it.
func SubjectsInDepartment(docs []models.Document, department string) []dto.SubjectGroup {
	type agg struct {
		order    int
		teacher  string
		count    int
		lectures map[int]struct{}
		uploader map[string]struct{}
	}
	bySubject := make(map[string]*agg)
	for _, doc := range docs {
		if doc.Department != department {
			continue
		}
		entry, ok := bySubject[doc.SubjectName]
		if !ok {
			entry = &agg{
				order:    doc.SubjectOrder,
				teacher:  doc.TeacherName,
				lectures: make(map[int]struct{}),
				uploader: make(map[string]struct{}),
			}
			bySubject[doc.SubjectName] = entry
		}
		entry.count++
		if n, err := strconv.Atoi(strings.TrimSpace(doc.LectureLabel)); err == nil {
			entry.lectures[n] = struct{}{}
		}
		if doc.OwnerID != "" {
			entry.uploader[doc.OwnerID] = struct{}{}
		}
	}

	groups := make([]dto.SubjectGroup, 0, len(bySubject))
	for name, entry := range bySubject {
		lectures := make([]int, 0, len(entry.lectures))
		for n := range entry.lectures {
			lectures = append(lectures, n)
		}
		sort.Ints(lectures)
		uploaders := make([]string, 0, len(entry.uploader))
		for id := range entry.uploader {
			uploaders = append(uploaders, id)
		}
		sort.Strings(uploaders)
		groups = append(groups, dto.SubjectGroup{
			Name:           name,
			Teacher:        entry.teacher,
			FileCount:      entry.count,
			LectureNumbers: lectures,
			UploaderIDs:    uploaders,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		oi, oj := bySubject[groups[i].Name].order, bySubject[groups[j].Name].order
		if oi != oj {
			return oi < oj
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// LecturesInSubject buckets one subject's documents by lecture number, so a
// lab joins the group of the lecture it belongs to. Documents inside a group
// follow slot order, which puts the lecture ahead of its lab.
func LecturesInSubject(docs []models.Document, department, subject string) []dto.LectureGroup {
	byNumber := make(map[int][]models.Document)
	for _, doc := range docs {
		if doc.Department != department || doc.SubjectName != subject {
			continue
		}
		n := lectureNumberOf(doc)
		byNumber[n] = append(byNumber[n], doc)
	}

	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	groups := make([]dto.LectureGroup, 0, len(numbers))
	for _, n := range numbers {
		bucket := byNumber[n]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].LectureOrder < bucket[j].LectureOrder
		})
		groups = append(groups, dto.LectureGroup{Number: n, Documents: bucket})
	}
	return groups
}

// DepartmentStats aggregates collection-wide counters for the stats panel.
func DepartmentStats(docs []models.Document) dto.DashboardStats {
	stats := dto.DashboardStats{
		FilesPerDept:  make(map[string]int),
		LatestPerDept: make(map[string]*time.Time),
		GeneratedAt:   time.Now().UTC(),
	}
	// Subjects count once across departments; the same course taught in two
	// semesters is still one subject.
	subjects := make(map[string]struct{})
	for _, doc := range docs {
		stats.TotalFiles++
		subjects[doc.SubjectName] = struct{}{}
		stats.FilesPerDept[doc.Department]++
		touched := doc.LastTouched()
		if current := stats.LatestPerDept[doc.Department]; current == nil || touched.After(*current) {
			t := touched
			stats.LatestPerDept[doc.Department] = &t
		}
	}
	stats.TotalSubjects = len(subjects)
	stats.TotalDepartments = len(stats.FilesPerDept)
	return stats
}

// LatestDateForDepartment returns the freshest document timestamp in a
// department, or nil when it holds nothing.
func LatestDateForDepartment(docs []models.Document, department string) *time.Time {
	var latest *time.Time
	for _, doc := range docs {
		if doc.Department != department {
			continue
		}
		touched := doc.LastTouched()
		if latest == nil || touched.After(*latest) {
			t := touched
			latest = &t
		}
	}
	return latest
}
