package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Department is a top-level academic grouping (program + semester) carrying a
// curated sort rank. The tables below are hand-curated configuration data and
// never mutated at runtime.
type Department struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Subject is a course offered inside a department. The display name may embed
// the instructor after a " - " delimiter.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// LectureKind distinguishes regular lecture slots from lab sessions.
type LectureKind string

const (
	KindRegular LectureKind = "regular"
	KindLab     LectureKind = "lab"
)

const (
	// RegularSlots is the number of regular lecture slots per subject.
	RegularSlots = 48
	// LabSlots is the number of lab slots per subject. Lab slots rank after
	// every regular slot regardless of their numeric label.
	LabSlots = 16

	labSuffix = "(Lab)"
)

var departments = []Department{
	{ID: "BSAF-1st", Name: "BS Accounting & Finance (1st Semester)", Order: 1},
	{ID: "BSAI-1st", Name: "BS Artificial Intelligence (1st Semester)", Order: 2},
	{ID: "BSAI-3rd", Name: "BS Artificial Intelligence (3rd Semester)", Order: 3},
	{ID: "BSAI-5th", Name: "BS Artificial Intelligence (5th Semester)", Order: 4},
	{ID: "BSCS-1st", Name: "BS Computer Science (1st Semester)", Order: 5},
	{ID: "BSCS-3rd", Name: "BS Computer Science (3rd Semester)", Order: 6},
	{ID: "BSCS-5th", Name: "BS Computer Science (5th Semester)", Order: 7},
	{ID: "BSCS-7th", Name: "BS Computer Science (7th Semester)", Order: 8},
	{ID: "BSIT-1st", Name: "BS Information Technology (1st Semester)", Order: 9},
	{ID: "BSIT-3rd", Name: "BS Information Technology (3rd Semester)", Order: 10},
	{ID: "BSIT-7th", Name: "BS Information Technology (7th Semester)", Order: 11},
	{ID: "BSSE-1st", Name: "BS Software Engineering (1st Semester)", Order: 12},
}

var subjectsByDepartment = map[string][]Subject{
	"BSAF-1st": {
		{ID: "principles-of-accounting", Name: "Principles of Accounting - Prof. Saima Iqbal", Order: 1},
		{ID: "business-mathematics", Name: "Business Mathematics - Mr. Adnan Shah", Order: 2},
		{ID: "introduction-to-business", Name: "Introduction to Business - Dr. Farhan Ali", Order: 3},
		{ID: "english-composition", Name: "English Composition - Ms. Rabia Noor", Order: 4},
	},
	"BSAI-1st": {
		{ID: "programming-fundamentals", Name: "Programming Fundamentals - Dr. Imran Khan", Order: 1},
		{ID: "applied-physics", Name: "Applied Physics - Dr. Nadia Hussain", Order: 2},
		{ID: "calculus-and-analytical-geometry", Name: "Calculus and Analytical Geometry - Mr. Bilal Ahmed", Order: 3},
		{ID: "introduction-to-artificial-intelligence", Name: "Introduction to Artificial Intelligence - Dr. Sara Qureshi", Order: 4},
		{ID: "islamic-studies", Name: "Islamic Studies", Order: 5},
	},
	"BSAI-3rd": {
		{ID: "object-oriented-programming", Name: "Object Oriented Programming - Dr. Imran Khan", Order: 1},
		{ID: "discrete-structures", Name: "Discrete Structures - Ms. Hina Baig", Order: 2},
		{ID: "machine-learning-fundamentals", Name: "Machine Learning Fundamentals - Dr. Sara Qureshi", Order: 3},
		{ID: "linear-algebra", Name: "Linear Algebra - Mr. Bilal Ahmed", Order: 4},
	},
	"BSAI-5th": {
		{ID: "deep-learning", Name: "Deep Learning - Dr. Sara Qureshi", Order: 1},
		{ID: "computer-vision", Name: "Computer Vision - Dr. Usman Tariq", Order: 2},
		{ID: "natural-language-processing", Name: "Natural Language Processing - Dr. Ayesha Siddiqui", Order: 3},
		{ID: "probability-and-statistics", Name: "Probability and Statistics - Mr. Adnan Shah", Order: 4},
	},
	"BSCS-1st": {
		{ID: "programming-fundamentals", Name: "Programming Fundamentals - Dr. Imran Khan", Order: 1},
		{ID: "calculus-and-analytical-geometry", Name: "Calculus and Analytical Geometry - Mr. Bilal Ahmed", Order: 2},
		{ID: "data-structures", Name: "Data Structures - Dr. Khalid Mehmood", Order: 3},
		{ID: "applied-physics", Name: "Applied Physics - Dr. Nadia Hussain", Order: 4},
		{ID: "functional-english", Name: "Functional English - Ms. Rabia Noor", Order: 5},
		{ID: "islamic-studies", Name: "Islamic Studies", Order: 6},
	},
	"BSCS-3rd": {
		{ID: "object-oriented-programming", Name: "Object Oriented Programming - Dr. Imran Khan", Order: 1},
		{ID: "digital-logic-design", Name: "Digital Logic Design - Mr. Waqas Malik", Order: 2},
		{ID: "discrete-structures", Name: "Discrete Structures - Ms. Hina Baig", Order: 3},
		{ID: "database-systems", Name: "Database Systems - Dr. Usman Tariq", Order: 4},
		{ID: "linear-algebra", Name: "Linear Algebra - Mr. Bilal Ahmed", Order: 5},
	},
	"BSCS-5th": {
		{ID: "operating-systems", Name: "Operating Systems - Dr. Khalid Mehmood", Order: 1},
		{ID: "computer-networks", Name: "Computer Networks - Mr. Waqas Malik", Order: 2},
		{ID: "software-engineering", Name: "Software Engineering - Dr. Farhan Ali", Order: 3},
		{ID: "theory-of-automata", Name: "Theory of Automata - Ms. Hina Baig", Order: 4},
		{ID: "probability-and-statistics", Name: "Probability and Statistics - Mr. Adnan Shah", Order: 5},
	},
	"BSCS-7th": {
		{ID: "compiler-construction", Name: "Compiler Construction - Dr. Khalid Mehmood", Order: 1},
		{ID: "artificial-intelligence", Name: "Artificial Intelligence - Dr. Sara Qureshi", Order: 2},
		{ID: "information-security", Name: "Information Security - Dr. Ayesha Siddiqui", Order: 3},
		{ID: "parallel-and-distributed-computing", Name: "Parallel and Distributed Computing - Dr. Usman Tariq", Order: 4},
		{ID: "final-year-project", Name: "Final Year Project", Order: 5},
	},
	"BSIT-1st": {
		{ID: "introduction-to-ict", Name: "Introduction to ICT - Mr. Waqas Malik", Order: 1},
		{ID: "programming-fundamentals", Name: "Programming Fundamentals - Dr. Imran Khan", Order: 2},
		{ID: "business-mathematics", Name: "Business Mathematics - Mr. Adnan Shah", Order: 3},
		{ID: "english-composition", Name: "English Composition - Ms. Rabia Noor", Order: 4},
	},
	"BSIT-3rd": {
		{ID: "web-technologies", Name: "Web Technologies - Mr. Salman Rauf", Order: 1},
		{ID: "object-oriented-programming", Name: "Object Oriented Programming - Dr. Imran Khan", Order: 2},
		{ID: "database-systems", Name: "Database Systems - Dr. Usman Tariq", Order: 3},
		{ID: "computer-organization", Name: "Computer Organization - Mr. Waqas Malik", Order: 4},
	},
	"BSIT-7th": {
		{ID: "cloud-computing", Name: "Cloud Computing - Dr. Usman Tariq", Order: 1},
		{ID: "mobile-application-development", Name: "Mobile Application Development - Mr. Salman Rauf", Order: 2},
		{ID: "it-project-management", Name: "IT Project Management - Dr. Farhan Ali", Order: 3},
		{ID: "enterprise-systems", Name: "Enterprise Systems - Ms. Hina Baig", Order: 4},
		{ID: "final-year-project", Name: "Final Year Project", Order: 5},
	},
	"BSSE-1st": {
		{ID: "software-engineering-fundamentals", Name: "Software Engineering Fundamentals - Dr. Farhan Ali", Order: 1},
		{ID: "programming-fundamentals", Name: "Programming Fundamentals - Dr. Imran Khan", Order: 2},
		{ID: "calculus-and-analytical-geometry", Name: "Calculus and Analytical Geometry - Mr. Bilal Ahmed", Order: 3},
		{ID: "communication-skills", Name: "Communication Skills - Ms. Rabia Noor", Order: 4},
	},
}

func init() {
	if err := Validate(); err != nil {
		panic(err)
	}
}

// Validate checks that curated ranks are dense and unique per scope. A table
// violating this is a data-entry error and must never ship.
func Validate() error {
	if err := validateRanks("departments", len(departments), func(i int) int { return departments[i].Order }); err != nil {
		return err
	}
	for deptID, subjects := range subjectsByDepartment {
		subjects := subjects
		if err := validateRanks("subjects of "+deptID, len(subjects), func(i int) int { return subjects[i].Order }); err != nil {
			return err
		}
	}
	for deptID := range subjectsByDepartment {
		if DepartmentRank(deptID) == 0 {
			return fmt.Errorf("catalog: subject table references unknown department %q", deptID)
		}
	}
	return nil
}

func validateRanks(scope string, n int, orderAt func(int) int) error {
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		order := orderAt(i)
		if order < 1 || order > n {
			return fmt.Errorf("catalog: %s rank %d outside dense range 1..%d", scope, order, n)
		}
		if seen[order] {
			return fmt.Errorf("catalog: %s rank %d assigned twice", scope, order)
		}
		seen[order] = true
	}
	return nil
}

// Departments returns the curated department list in rank order.
func Departments() []Department {
	out := make([]Department, len(departments))
	copy(out, departments)
	return out
}

// DepartmentRank returns the curated order for a department identifier.
// Unknown identifiers yield 0, meaning unranked/last.
func DepartmentRank(deptID string) int {
	for _, d := range departments {
		if d.ID == deptID {
			return d.Order
		}
	}
	return 0
}

// DepartmentName returns the display name for a department identifier, or the
// identifier itself when unknown.
func DepartmentName(deptID string) string {
	for _, d := range departments {
		if d.ID == deptID {
			return d.Name
		}
	}
	return deptID
}

// SubjectsFor returns the ordered subject list of a department. Unknown
// departments yield an empty list.
func SubjectsFor(deptID string) []Subject {
	subjects, ok := subjectsByDepartment[deptID]
	if !ok {
		return nil
	}
	out := make([]Subject, len(subjects))
	copy(out, subjects)
	return out
}

// SubjectRank returns the curated order of a subject display name within a
// department, or 0 when either is unknown.
func SubjectRank(deptID, subjectName string) int {
	for _, s := range subjectsByDepartment[deptID] {
		if s.Name == subjectName {
			return s.Order
		}
	}
	return 0
}

// LectureRank maps a lecture label onto its slot order and kind. Regular
// labels "1".."48" occupy ranks 1-48; lab labels "1(Lab)".."16(Lab)" occupy
// ranks 49-64, so regular slots always sort ahead of lab slots. Unrecognised
// labels are an input-validation error at the call site, never a silent
// default.
func LectureRank(label string) (int, LectureKind, error) {
	raw := strings.TrimSpace(label)
	kind := KindRegular
	if strings.HasSuffix(raw, labSuffix) {
		kind = KindLab
		raw = strings.TrimSuffix(raw, labSuffix)
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, "", fmt.Errorf("catalog: unrecognised lecture label %q", label)
	}

	switch kind {
	case KindLab:
		if number < 1 || number > LabSlots {
			return 0, "", fmt.Errorf("catalog: lab number %d outside 1..%d", number, LabSlots)
		}
		return RegularSlots + number, KindLab, nil
	default:
		if number < 1 || number > RegularSlots {
			return 0, "", fmt.Errorf("catalog: lecture number %d outside 1..%d", number, RegularSlots)
		}
		return number, KindRegular, nil
	}
}

// LectureNumber extracts the bare numeric part of a lecture label. Lab labels
// report their lab number, not their slot rank.
func LectureNumber(label string) (int, error) {
	order, kind, err := LectureRank(label)
	if err != nil {
		return 0, err
	}
	if kind == KindLab {
		return order - RegularSlots, nil
	}
	return order, nil
}
