package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

func newDocumentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func documentRows(docs ...models.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "file_name", "file_path", "file_size", "mime_type",
		"department", "subject_name", "teacher_name", "lecture_label",
		"department_order", "subject_order", "lecture_order", "full_sequence",
		"tags", "searchable_text", "public_url", "uploaded_at", "updated_at",
	})
	for _, d := range docs {
		rows.AddRow(
			d.ID, d.OwnerID, d.FileName, d.FilePath, d.FileSize, d.MimeType,
			d.Department, d.SubjectName, d.TeacherName, d.LectureLabel,
			d.DepartmentOrder, d.SubjectOrder, d.LectureOrder, d.FullSequence,
			d.Tags, d.SearchableText, d.PublicURL, d.UploadedAt, d.UpdatedAt,
		)
	}
	return rows
}

func TestDocumentRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{
		OwnerID:         "user-1",
		FileName:        "lecture-notes.pdf",
		FilePath:        "bscs-1st/data-structures/07/lecture-notes.pdf",
		FileSize:        2048,
		MimeType:        "application/pdf",
		Department:      "BSCS-1st",
		SubjectName:     "Data Structures",
		TeacherName:     "Dr. Khalid Mehmood",
		LectureLabel:    "7",
		DepartmentOrder: 5,
		SubjectOrder:    3,
		LectureOrder:    7,
		FullSequence:    "05_03_07",
		Tags:            pq.StringArray{"bscs-1st", "data-structures"},
		SearchableText:  "data structures dr. khalid mehmood lecture 7",
	}
	require.NoError(t, repo.Create(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	require.False(t, doc.UploadedAt.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, file_name")).
		WithArgs(doc.ID).
		WillReturnRows(documentRows(*doc))

	found, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, "05_03_07", found.FullSequence)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM documents")).
		WithArgs("BSCS-1st", "%graph%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, file_name")).
		WithArgs("BSCS-1st", "%graph%").
		WillReturnRows(documentRows(models.Document{ID: "doc-1", Department: "BSCS-1st", UploadedAt: time.Now()}))

	docs, total, err := repo.List(context.Background(), models.DocumentFilter{
		Department: "BSCS-1st",
		Search:     "Graph",
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, docs, 1)
	require.Equal(t, "doc-1", docs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListBatchPaging(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY uploaded_at DESC, id DESC LIMIT $1 OFFSET $2")).
		WithArgs(1000, 2000).
		WillReturnRows(documentRows(models.Document{ID: "doc-9", UploadedAt: time.Now()}))

	docs, err := repo.ListBatch(context.Background(), 1000, 2000)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDeleteByIDs(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.DeleteByIDs(context.Background(), []string{"doc-1", "doc-2"})
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)

	affected, err = repo.DeleteByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryOwnersByIDs(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "owner_id"}).
		AddRow("doc-1", "user-1").
		AddRow("doc-2", "user-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id FROM documents WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	owners, err := repo.OwnersByIDs(context.Background(), []string{"doc-1", "doc-2", "doc-gone"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"doc-1": "user-1", "doc-2": "user-2"}, owners)
	require.NoError(t, mock.ExpectationsWereMet())
}
