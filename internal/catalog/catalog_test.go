package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsCuratedTables(t *testing.T) {
	require.NoError(t, Validate())
}

func TestDepartmentRank(t *testing.T) {
	assert.Equal(t, 5, DepartmentRank("BSCS-1st"))
	assert.Equal(t, 2, DepartmentRank("BSAI-1st"))
	assert.Equal(t, 11, DepartmentRank("BSIT-7th"))
	assert.Equal(t, 0, DepartmentRank("MBBS-1st"))
}

func TestSubjectsForUnknownDepartmentIsEmpty(t *testing.T) {
	assert.Empty(t, SubjectsFor("MBBS-1st"))
}

func TestSubjectRank(t *testing.T) {
	assert.Equal(t, 3, SubjectRank("BSCS-1st", "Data Structures - Dr. Khalid Mehmood"))
	assert.Equal(t, 0, SubjectRank("BSCS-1st", "Quantum Mechanics - Dr. Nobody"))
	assert.Equal(t, 0, SubjectRank("MBBS-1st", "Anatomy"))
}

func TestLectureRankRegular(t *testing.T) {
	order, kind, err := LectureRank("7")
	require.NoError(t, err)
	assert.Equal(t, 7, order)
	assert.Equal(t, KindRegular, kind)

	order, kind, err = LectureRank("48")
	require.NoError(t, err)
	assert.Equal(t, 48, order)
	assert.Equal(t, KindRegular, kind)
}

func TestLectureRankLab(t *testing.T) {
	order, kind, err := LectureRank("3(Lab)")
	require.NoError(t, err)
	assert.Equal(t, 51, order)
	assert.Equal(t, KindLab, kind)

	order, _, err = LectureRank("16(Lab)")
	require.NoError(t, err)
	assert.Equal(t, 64, order)
}

func TestLectureRankRejectsBadLabels(t *testing.T) {
	for _, label := range []string{"", "0", "49", "17(Lab)", "0(Lab)", "abc", "7(lab)"} {
		_, _, err := LectureRank(label)
		assert.Error(t, err, "label %q", label)
	}
}

// Every regular slot must rank ahead of every lab slot.
func TestRegularAlwaysSortsBeforeLab(t *testing.T) {
	for k := 1; k <= RegularSlots; k++ {
		regOrder, _, err := LectureRank(strconv.Itoa(k))
		require.NoError(t, err)
		for j := 1; j <= LabSlots; j++ {
			labOrder, _, err := LectureRank(strconv.Itoa(j) + "(Lab)")
			require.NoError(t, err)
			assert.Less(t, regOrder, labOrder)
		}
	}
}

func TestLectureNumberStripsLabSuffix(t *testing.T) {
	n, err := LectureNumber("3(Lab)")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = LectureNumber("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
