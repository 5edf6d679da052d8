package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf-api/internal/catalog"
	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
	"github.com/studyshelf/studyshelf-api/pkg/export"
)

type collectionFetcher interface {
	FetchAll(ctx context.Context) ([]models.Document, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DashboardServiceConfig governs view caching.
type DashboardServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DashboardService serves the browsing views. Each view is computed from one
// full-collection fetch; hot views are cached under the dashboard: prefix and
// invalidated together whenever the collection changes.
type DashboardService struct {
	fetcher collectionFetcher
	cache   dashboardCache
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	cfg     DashboardServiceConfig
}

// NewDashboardService constructs the service.
func NewDashboardService(fetcher collectionFetcher, cache dashboardCache, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	return &DashboardService{
		fetcher: fetcher,
		cache:   cache,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		cfg:     cfg,
	}
}

// Departments returns the ranked department list.
func (s *DashboardService) Departments(ctx context.Context) ([]dto.DepartmentView, error) {
	var cached []dto.DepartmentView
	if s.cacheGet(ctx, "dashboard:departments", &cached) {
		return cached, nil
	}
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	views := UniqueDepartments(docs)
	s.cacheSet(ctx, "dashboard:departments", views)
	return views, nil
}

// Subjects returns the subject groups of one department.
func (s *DashboardService) Subjects(ctx context.Context, department string) ([]dto.SubjectGroup, error) {
	if catalog.DepartmentRank(department) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown department %q", department))
	}
	key := "dashboard:subjects:" + department
	var cached []dto.SubjectGroup
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := SubjectsInDepartment(docs, department)
	s.cacheSet(ctx, key, groups)
	return groups, nil
}

// Lectures returns the lecture groups of one subject.
func (s *DashboardService) Lectures(ctx context.Context, department, subject string) ([]dto.LectureGroup, error) {
	if catalog.DepartmentRank(department) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown department %q", department))
	}
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return LecturesInSubject(docs, department, subject), nil
}

// Stats returns collection-wide counters.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var cached dto.DashboardStats
	if s.cacheGet(ctx, "dashboard:stats", &cached) {
		return &cached, nil
	}
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := DepartmentStats(docs)
	s.cacheSet(ctx, "dashboard:stats", stats)
	return &stats, nil
}

// Suggest returns ranked search suggestions for the query.
func (s *DashboardService) Suggest(ctx context.Context, query string) ([]dto.Suggestion, error) {
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return Suggestions(docs, query), nil
}

// Export renders the whole catalogue as CSV or PDF.
func (s *DashboardService) Export(ctx context.Context, format string) ([]byte, string, string, error) {
	docs, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, "", "", err
	}
	data := catalogueDataset(docs)
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", "catalogue-" + stamp + ".csv", nil
	case "pdf":
		payload, err := s.pdf.Render(data, "Lecture Catalogue")
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", "catalogue-" + stamp + ".pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// Invalidate drops every cached dashboard view.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func catalogueDataset(docs []models.Document) export.Dataset {
	headers := []string{"Sequence", "Department", "Subject", "Teacher", "Lecture", "File", "Size", "Uploaded"}
	rows := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, map[string]string{
			"Sequence":   doc.FullSequence,
			"Department": doc.Department,
			"Subject":    doc.SubjectName,
			"Teacher":    doc.TeacherName,
			"Lecture":    doc.LectureLabel,
			"File":       doc.FileName,
			"Size":       strconv.FormatInt(doc.FileSize, 10),
			"Uploaded":   doc.UploadedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
