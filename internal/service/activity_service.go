package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
	"github.com/studyshelf/studyshelf-api/pkg/jobs"
)

type activityStore interface {
	Create(ctx context.Context, entry *models.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

type activityPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// ActivityServiceConfig tunes the async activity pipeline.
type ActivityServiceConfig struct {
	Channel     string
	RecentLimit int
	Workers     int
}

// ActivityService records activity entries asynchronously. Writes go through
// an in-memory queue so request latency never pays for the audit trail; a
// failed write costs one feed entry, not the user action that produced it.
type ActivityService struct {
	repo      activityStore
	publisher activityPublisher
	logger    *zap.Logger
	cfg       ActivityServiceConfig
	queue     *jobs.Queue
}

// NewActivityService constructs the service and its worker queue.
func NewActivityService(repo activityStore, publisher activityPublisher, logger *zap.Logger, cfg ActivityServiceConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Channel == "" {
		cfg.Channel = "studyshelf:activity"
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 20
	}
	s := &ActivityService{repo: repo, publisher: publisher, logger: logger, cfg: cfg}
	s.queue = jobs.NewQueue("activity", s.handle, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the background workers.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Record enqueues one activity entry for persistence and live broadcast.
func (s *ActivityService) Record(entry *models.ActivityEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: entry.Action, Payload: entry}); err != nil {
		s.logger.Warn("activity entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}

// RecordForActor builds an entry from an explicit logging request.
func (s *ActivityService) RecordForActor(actor *models.JWTClaims, req dto.RecordActivityRequest) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	switch req.Action {
	case models.ActivityActionUpload, models.ActivityActionUpdate, models.ActivityActionDelete,
		models.ActivityActionView, models.ActivityActionDownload, models.ActivityActionOrganize,
		models.ActivityActionShare:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action %q", req.Action))
	}

	entry := &models.ActivityEntry{
		ActorID:    &actor.UserID,
		ActorName:  actor.FullName,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetName: req.TargetName,
		Department: req.Department,
		Metadata:   req.Metadata,
	}
	if req.TargetID != "" {
		id := req.TargetID
		entry.TargetID = &id
	}
	s.Record(entry)
	return nil
}

// Recent returns the newest entries for the feed bootstrap.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = s.cfg.RecentLimit
	}
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}
	return entries, nil
}

func (s *ActivityService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.ActivityEntry)
	if !ok {
		return fmt.Errorf("unexpected activity payload %T", job.Payload)
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.cfg.Channel, entry); err != nil {
			s.logger.Warn("activity broadcast failed", zap.String("id", entry.ID), zap.Error(err))
		}
	}
	return nil
}
