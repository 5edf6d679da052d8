package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

const documentColumns = `id, owner_id, file_name, file_path, file_size, mime_type,
       department, subject_name, teacher_name, lecture_label,
       department_order, subject_order, lecture_order, full_sequence,
       tags, searchable_text, public_url, uploaded_at, updated_at`

// DocumentRepository handles lecture document metadata persistence.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores metadata for an uploaded lecture file.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documents
	(id, owner_id, file_name, file_path, file_size, mime_type,
	 department, subject_name, teacher_name, lecture_label,
	 department_order, subject_order, lecture_order, full_sequence,
	 tags, searchable_text, public_url, uploaded_at, updated_at)
	VALUES (:id, :owner_id, :file_name, :file_path, :file_size, :mime_type,
	 :department, :subject_name, :teacher_name, :lecture_label,
	 :department_order, :subject_order, :lecture_order, :full_sequence,
	 :tags, :searchable_text, :public_url, :uploaded_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID retrieves one document row.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns documents matching the filter together with the total count.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.SubjectName != "" {
		args = append(args, filter.SubjectName)
		conditions = append(conditions, fmt.Sprintf("subject_name = $%d", len(args)))
	}
	if filter.LectureNum != "" {
		args = append(args, filter.LectureNum)
		conditions = append(conditions, fmt.Sprintf("lecture_label = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("searchable_text LIKE $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(" ORDER BY department_order, subject_order, lecture_order, uploaded_at DESC LIMIT %d OFFSET %d", limit, offset)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// ListBatch returns one page of the full collection, newest uploads first.
// The id tiebreaker keeps pages stable while new rows arrive.
func (r *DocumentRepository) ListBatch(ctx context.Context, limit, offset int) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC, id DESC LIMIT $1 OFFSET $2`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list document batch: %w", err)
	}
	return docs, nil
}

// OwnersByIDs returns the owner of each existing id in the given set.
func (r *DocumentRepository) OwnersByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	const query = `SELECT id, owner_id FROM documents WHERE id = ANY($1)`
	rows := []struct {
		ID      string `db:"id"`
		OwnerID string `db:"owner_id"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("document owners: %w", err)
	}
	owners := make(map[string]string, len(rows))
	for _, row := range rows {
		owners[row.ID] = row.OwnerID
	}
	return owners, nil
}

// PathsByIDs returns the stored file path of each existing id in the set.
func (r *DocumentRepository) PathsByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	const query = `SELECT id, file_path FROM documents WHERE id = ANY($1)`
	rows := []struct {
		ID       string `db:"id"`
		FilePath string `db:"file_path"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("document paths: %w", err)
	}
	paths := make(map[string]string, len(rows))
	for _, row := range rows {
		paths[row.ID] = row.FilePath
	}
	return paths, nil
}

// DeleteByIDs removes the given rows and reports how many were deleted.
func (r *DocumentRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM documents WHERE id = ANY($1)`
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check document delete rows: %w", err)
	}
	return affected, nil
}
