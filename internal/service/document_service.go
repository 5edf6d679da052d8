package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
	"github.com/studyshelf/studyshelf-api/internal/sequence"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	ListBatch(ctx context.Context, limit, offset int) ([]models.Document, error)
	OwnersByIDs(ctx context.Context, ids []string) (map[string]string, error)
	PathsByIDs(ctx context.Context, ids []string) (map[string]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type documentFileStorage interface {
	SaveStream(path string, r io.Reader) (string, error)
	Open(path string) (*os.File, error)
	Remove(path string) error
	PublicURL(path string) string
}

type documentSignedURLSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

type activityRecorder interface {
	Record(entry *models.ActivityEntry)
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

// DocumentUpload carries upload metadata and stream reader.
type DocumentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// DocumentDownload bundles file reader metadata for streaming.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
	ExpiresAt time.Time
}

// DocumentServiceConfig holds validation and fetch-loop parameters.
type DocumentServiceConfig struct {
	MaxFileSize     int64
	AllowedMIMEs    []string
	APIPrefix       string
	FetchBatchSize  int
	FetchPagePacing time.Duration
}

// DocumentService manages lecture file metadata and storage IO.
type DocumentService struct {
	repo      documentStore
	storage   documentFileStorage
	signer    documentSignedURLSigner
	activity  activityRecorder
	dashboard dashboardInvalidator
	logger    *zap.Logger
	cfg       DocumentServiceConfig
	mimeSet   map[string]struct{}
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo documentStore, storage documentFileStorage, signer documentSignedURLSigner, activity activityRecorder, dashboard dashboardInvalidator, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 50 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"image/png",
			"image/jpeg",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.FetchBatchSize <= 0 {
		cfg.FetchBatchSize = 1000
	}
	if cfg.FetchPagePacing <= 0 {
		cfg.FetchPagePacing = 50 * time.Millisecond
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &DocumentService{
		repo:      repo,
		storage:   storage,
		signer:    signer,
		activity:  activity,
		dashboard: dashboard,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// SetDashboardInvalidator wires the dashboard cache invalidation hook. The
// dashboard service consumes this service's fetch loop, so the two are
// constructed in sequence and linked afterwards.
func (s *DocumentService) SetDashboardInvalidator(d dashboardInvalidator) {
	s.dashboard = d
}

// Upload derives ordering metadata for the selection, persists the physical
// file and then the metadata row. A failed insert removes the stored file so
// no orphan binary survives the request.
func (s *DocumentService) Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload DocumentUpload, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	code, err := sequence.Build(meta.Department, meta.SubjectName, meta.LectureLabel)
	if err != nil {
		return nil, err
	}

	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	path := s.generatePath(code, upload.Filename)
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	storedPath, err := s.storage.SaveStream(path, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist lecture file")
	}

	doc := &models.Document{
		OwnerID:         actor.UserID,
		FileName:        filepath.Base(upload.Filename),
		FilePath:        storedPath,
		FileSize:        upload.Size,
		MimeType:        mimeType,
		Department:      code.DepartmentID,
		SubjectName:     code.SubjectName,
		TeacherName:     code.TeacherName,
		LectureLabel:    code.LectureLabel,
		DepartmentOrder: code.DepartmentOrder,
		SubjectOrder:    code.SubjectOrder,
		LectureOrder:    code.LectureOrder,
		FullSequence:    code.FullSequence,
		Tags:            pq.StringArray(code.Tags),
		SearchableText:  code.SearchableText,
		PublicURL:       s.storage.PublicURL(storedPath),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		if removeErr := s.storage.Remove(storedPath); removeErr != nil {
			s.logger.Warn("orphan cleanup failed", zap.String("path", storedPath), zap.Error(removeErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document metadata")
	}

	s.recordActivity(actor, models.ActivityActionUpload, doc)
	s.invalidateDashboard(ctx)
	return doc, nil
}

// Get returns one document row.
func (s *DocumentService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// List returns a filtered page of documents with the total count.
func (s *DocumentService) List(ctx context.Context, filter dto.DocumentListFilter, actor *models.JWTClaims) ([]models.Document, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	docs, total, err := s.repo.List(ctx, models.DocumentFilter{
		Department:  filter.Department,
		SubjectName: filter.SubjectName,
		LectureNum:  filter.LectureNum,
		OwnerID:     filter.OwnerID,
		Search:      filter.Search,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// FetchAll walks the whole collection in fixed-size batches. Successive pages
// are paced apart so a large collection cannot monopolise the database, and
// the walk honours context cancellation between pages. A page failure stops
// the walk and returns what was collected so far together with the error.
func (s *DocumentService) FetchAll(ctx context.Context) ([]models.Document, error) {
	batch := s.cfg.FetchBatchSize
	all := make([]models.Document, 0, batch)

	for offset := 0; ; offset += batch {
		if offset > 0 {
			timer := time.NewTimer(s.cfg.FetchPagePacing)
			select {
			case <-ctx.Done():
				timer.Stop()
				return all, ctx.Err()
			case <-timer.C:
			}
		}

		page, err := s.repo.ListBatch(ctx, batch, offset)
		if err != nil {
			s.logger.Warn("collection fetch stopped early",
				zap.Int("offset", offset), zap.Int("collected", len(all)), zap.Error(err))
			return all, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch document batch")
		}
		all = append(all, page...)
		if len(page) < batch {
			return all, nil
		}
	}
}

// GetDownloadURL generates a signed URL for downloading the file.
func (s *DocumentService) GetDownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (string, error) {
	if s.signer == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.Get(ctx, id, actor)
	if err != nil {
		return "", err
	}
	token, _, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return fmt.Sprintf("%s/documents/%s/download?token=%s", base, doc.ID, token), nil
}

// Download validates the token and opens the stored file. The token is the
// sole credential; a nil actor only skips activity attribution.
func (s *DocumentService) Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*DocumentDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	docID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	if docID != doc.ID || relPath != doc.FilePath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open stored file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file metadata")
	}

	s.recordActivity(actor, models.ActivityActionDownload, doc)
	return &DocumentDownload{
		File:      file,
		Filename:  doc.FileName,
		MimeType:  doc.MimeType,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

// Delete removes a batch of documents. Every id must exist and belong to the
// actor unless the actor is an admin; the check runs before any row or file
// is touched so a bad batch deletes nothing.
func (s *DocumentService) Delete(ctx context.Context, ids []string, actor *models.JWTClaims) (int64, error) {
	if actor == nil {
		return 0, appErrors.ErrUnauthorized
	}
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no document ids provided")
	}

	owners, err := s.repo.OwnersByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve document owners")
	}
	for _, id := range ids {
		owner, ok := owners[id]
		if !ok {
			return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("document %s not found", id))
		}
		if owner != actor.UserID && actor.Role != models.RoleAdmin {
			return 0, appErrors.Clone(appErrors.ErrForbidden, "documents can only be deleted by their owner")
		}
	}

	paths, err := s.repo.PathsByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve document paths")
	}

	affected, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete documents")
	}

	// Metadata is gone; file removal is best effort from here on.
	for _, path := range paths {
		if err := s.storage.Remove(path); err != nil {
			s.logger.Warn("stored file removal failed", zap.String("path", path), zap.Error(err))
		}
	}

	if s.activity != nil {
		id := actor.UserID
		s.activity.Record(&models.ActivityEntry{
			ActorID:    &id,
			ActorName:  actor.FullName,
			Action:     models.ActivityActionDelete,
			TargetType: "document",
			TargetName: fmt.Sprintf("%d documents", affected),
			Metadata:   []byte(fmt.Sprintf(`{"count":%d}`, affected)),
		})
	}
	s.invalidateDashboard(ctx)
	return affected, nil
}

func (s *DocumentService) recordActivity(actor *models.JWTClaims, action string, doc *models.Document) {
	if s.activity == nil || actor == nil {
		return
	}
	actorID := actor.UserID
	docID := doc.ID
	s.activity.Record(&models.ActivityEntry{
		ActorID:    &actorID,
		ActorName:  actor.FullName,
		Action:     action,
		TargetType: "document",
		TargetID:   &docID,
		TargetName: doc.FileName,
		Department: doc.Department,
	})
}

func (s *DocumentService) invalidateDashboard(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}

func (s *DocumentService) detectMime(upload DocumentUpload) (string, error) {
	if upload.Content == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "file reader missing")
	}
	if upload.MimeType != "" {
		return upload.MimeType, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

// generatePath nests files by sequence so the store mirrors the catalogue:
// department/subject-slug/NN/<suffix>-original-name.
func (s *DocumentService) generatePath(code *sequence.Code, original string) string {
	name := sanitizeFilename(filepath.Base(original))
	return filepath.ToSlash(filepath.Join(
		strings.ToLower(code.DepartmentID),
		sequence.Slug(code.SubjectName),
		code.LectureNumber,
		randomSuffix()+"-"+name,
	))
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
