package main

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf-api/internal/sequence"
)

func newReindexMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func reindexRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "department", "subject_name", "teacher_name", "lecture_label",
		"department_order", "subject_order", "lecture_order", "full_sequence", "searchable_text",
	})
}

func TestReindexWritesDerivedSearchText(t *testing.T) {
	db, mock, cleanup := newReindexMock(t)
	defer cleanup()

	seq, err := sequence.Build("BSCS-1st", "Data Structures - Dr. Khalid Mehmood", "7")
	require.NoError(t, err)

	// The stored text starts with the file name, which uploads never include.
	stale := "notes.pdf " + seq.SearchableText
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department")).
		WillReturnRows(reindexRows().AddRow(
			"doc-1", "BSCS-1st", "Data Structures", "Dr. Khalid Mehmood", "7",
			seq.DepartmentOrder, seq.SubjectOrder, seq.LectureOrder, seq.FullSequence, stale,
		))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents")).
		WithArgs("doc-1", seq.DepartmentOrder, seq.SubjectOrder, seq.LectureOrder,
			seq.FullSequence, pq.Array(seq.Tags), seq.SearchableText).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department")).
		WillReturnRows(reindexRows())

	changed, scanned, err := reindex(context.Background(), db, 500, false)
	require.NoError(t, err)
	require.Equal(t, 1, scanned)
	require.Equal(t, 1, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReindexSkipsCurrentRows(t *testing.T) {
	db, mock, cleanup := newReindexMock(t)
	defer cleanup()

	seq, err := sequence.Build("BSCS-1st", "Data Structures - Dr. Khalid Mehmood", "7")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department")).
		WillReturnRows(reindexRows().AddRow(
			"doc-1", "BSCS-1st", "Data Structures", "Dr. Khalid Mehmood", "7",
			seq.DepartmentOrder, seq.SubjectOrder, seq.LectureOrder, seq.FullSequence, seq.SearchableText,
		))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department")).
		WillReturnRows(reindexRows())

	changed, scanned, err := reindex(context.Background(), db, 500, false)
	require.NoError(t, err)
	require.Equal(t, 1, scanned)
	require.Equal(t, 0, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}
