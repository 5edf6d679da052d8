package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

// pgUndefinedTable is the Postgres error code for a missing relation.
const pgUndefinedTable = "42P01"

// ActivityRepository persists the append-only activity log.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one activity entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_log
	(id, actor_id, actor_name, action, target_type, target_id, target_name, department, metadata, created_at)
	VALUES (:id, :actor_id, :actor_name, :action, :target_type, :target_id, :target_name, :department, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create activity entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first. A missing
// activity_log table yields an empty result instead of an error so the
// feed degrades to silence on fresh deployments.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `SELECT id, actor_id, actor_name, action, target_type, target_id, target_name, department, metadata, created_at
	FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1`
	var entries []models.ActivityEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		if isUndefinedTable(err) {
			return []models.ActivityEntry{}, nil
		}
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	return entries, nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedTable
	}
	return false
}
