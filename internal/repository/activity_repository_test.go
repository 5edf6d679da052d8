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

func newActivityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestActivityRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	repo := NewActivityRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_log")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ActivityEntry{
		ActorName:  "Ayesha",
		Action:     models.ActivityActionUpload,
		TargetType: "document",
		TargetName: "lecture-notes.pdf",
		Department: "BSCS-1st",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRecent(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	repo := NewActivityRepository(db)
	rows := sqlmock.NewRows([]string{"id", "actor_id", "actor_name", "action", "target_type", "target_id", "target_name", "department", "metadata", "created_at"}).
		AddRow("act-2", nil, "Ayesha", "upload", "document", nil, "b.pdf", "BSCS-1st", nil, time.Now()).
		AddRow("act-1", nil, "Bilal", "delete", "document", nil, "a.pdf", "BSIT-7th", nil, time.Now().Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log ORDER BY created_at DESC")).
		WithArgs(50).
		WillReturnRows(rows)

	entries, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "act-2", entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryRecentMissingTable(t *testing.T) {
	db, mock, cleanup := newActivityRepoMock(t)
	defer cleanup()

	repo := NewActivityRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM activity_log")).
		WithArgs(25).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pgUndefinedTable)})

	entries, err := repo.Recent(context.Background(), 25)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NoError(t, mock.ExpectationsWereMet())
}
