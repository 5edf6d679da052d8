package sequence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/studyshelf/studyshelf-api/internal/catalog"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
)

// Code carries the ordering metadata derived from a (department, subject,
// lecture) selection at upload time. Building it is a pure computation; the
// record is persisted alongside the file attributes by the caller.
type Code struct {
	DepartmentID    string
	DepartmentOrder int
	SubjectOrder    int
	LectureOrder    int

	// FullSequence is the zero-padded DD_SS_LL composite key. Sorting by it
	// nests any document set into department → subject → lecture order.
	FullSequence string

	SubjectName   string
	TeacherName   string
	LectureLabel  string
	LectureNumber string
	IsLab         bool
	LectureTitle  string

	Tags           []string
	SearchableText string
}

const teacherSeparator = " - "

var semesterDigits = regexp.MustCompile(`\d+`)

// Build derives the full ordering metadata for an upload selection. All three
// inputs are required; any rank-lookup miss aborts with a field-specific
// validation error before any I/O happens.
func Build(deptID, subjectName, lectureLabel string) (*Code, error) {
	deptID = strings.TrimSpace(deptID)
	subjectName = strings.TrimSpace(subjectName)
	lectureLabel = strings.TrimSpace(lectureLabel)

	if deptID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	if subjectName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	if lectureLabel == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lecture is required")
	}

	deptOrder := catalog.DepartmentRank(deptID)
	subjectOrder := catalog.SubjectRank(deptID, subjectName)

	lectureOrder, kind, err := catalog.LectureRank(lectureLabel)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid lecture label")
	}

	if deptOrder == 0 || subjectOrder == 0 || lectureOrder == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sequence information incomplete")
	}

	isLab := kind == catalog.KindLab
	number, err := catalog.LectureNumber(lectureLabel)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid lecture label")
	}
	paddedNumber := pad2(number)

	name, teacher := splitTeacher(subjectName)

	title := fmt.Sprintf("%s - Lecture %s", name, paddedNumber)
	if isLab {
		title += " (Lab)"
	}

	code := &Code{
		DepartmentID:    deptID,
		DepartmentOrder: deptOrder,
		SubjectOrder:    subjectOrder,
		LectureOrder:    lectureOrder,
		FullSequence:    fmt.Sprintf("%s_%s_%s", pad2(deptOrder), pad2(subjectOrder), pad2(lectureOrder)),
		SubjectName:     name,
		TeacherName:     teacher,
		LectureLabel:    lectureLabel,
		LectureNumber:   paddedNumber,
		IsLab:           isLab,
		LectureTitle:    title,
	}
	code.Tags = buildTags(code)
	code.SearchableText = buildSearchableText(code)
	return code, nil
}

// Parse recovers the three order values from a DD_SS_LL sequence string.
func Parse(fullSequence string) (dept, subject, lecture int, err error) {
	parts := strings.Split(fullSequence, "_")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("sequence: malformed code %q", fullSequence)
	}
	values := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return 0, 0, 0, fmt.Errorf("sequence: malformed code %q", fullSequence)
		}
		var v int
		if _, scanErr := fmt.Sscanf(part, "%02d", &v); scanErr != nil {
			return 0, 0, 0, fmt.Errorf("sequence: malformed code %q", fullSequence)
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

// Slug lowercases a display name and joins its words with hyphens.
func Slug(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

func splitTeacher(subjectName string) (name, teacher string) {
	if !strings.Contains(subjectName, teacherSeparator) {
		return subjectName, ""
	}
	parts := strings.Split(subjectName, teacherSeparator)
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[len(parts)-1])
}

func buildTags(code *Code) []string {
	numberTag := "lecture-" + code.LectureNumber
	numberNoTag := "lecture-no-" + code.LectureNumber
	kindTag := "lecture"
	styleTag := "theory"
	if code.IsLab {
		numberTag = "lab-" + code.LectureNumber
		numberNoTag = "lab-no-" + code.LectureNumber
		kindTag = "lab"
		styleTag = "practical"
	}

	candidates := []string{
		code.DepartmentID,
		Slug(code.SubjectName),
		numberTag,
		Slug(code.TeacherName),
		numberNoTag,
		"sequence-" + code.FullSequence,
		semesterTag(code.DepartmentID),
		kindTag,
		styleTag,
	}

	tags := make([]string, 0, len(candidates))
	for _, tag := range candidates {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func semesterTag(deptID string) string {
	digits := semesterDigits.FindString(deptID)
	if digits == "" {
		return ""
	}
	return "semester-" + digits
}

func buildSearchableText(code *Code) string {
	kindWord := "Lecture"
	if code.IsLab {
		kindWord = "Lab"
	}
	parts := []string{
		code.DepartmentID,
		code.SubjectName,
		code.TeacherName,
		kindWord,
		strings.TrimLeft(code.LectureNumber, "0"),
	}
	parts = append(parts, code.Tags...)

	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}
