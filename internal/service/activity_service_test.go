package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
)

type activityStoreStub struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (s *activityStoreStub) Create(ctx context.Context, entry *models.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *activityStoreStub) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return append([]models.ActivityEntry(nil), s.entries[:limit]...), nil
}

func (s *activityStoreStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type publisherStub struct {
	mu       sync.Mutex
	channels []string
}

func (p *publisherStub) Publish(ctx context.Context, channel string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestActivityServiceRecordsAsync(t *testing.T) {
	store := &activityStoreStub{}
	publisher := &publisherStub{}
	svc := NewActivityService(store, publisher, nil, ActivityServiceConfig{Channel: "test:activity"})
	svc.Start(context.Background())
	defer svc.Stop()

	actor := &models.JWTClaims{UserID: "user-1", FullName: "Ayesha Khan"}
	require.NoError(t, svc.RecordForActor(actor, dto.RecordActivityRequest{
		Action:     models.ActivityActionUpload,
		TargetType: "document",
		TargetName: "notes.pdf",
		Department: "BSCS-1st",
	}))

	waitFor(t, func() bool { return store.count() == 1 && publisher.count() == 1 })
	require.Equal(t, "test:activity", publisher.channels[0])
	require.Equal(t, "Ayesha Khan", store.entries[0].ActorName)
}

func TestActivityServiceRejectsUnknownAction(t *testing.T) {
	svc := NewActivityService(&activityStoreStub{}, nil, nil, ActivityServiceConfig{})
	svc.Start(context.Background())
	defer svc.Stop()

	actor := &models.JWTClaims{UserID: "user-1"}
	err := svc.RecordForActor(actor, dto.RecordActivityRequest{Action: "explode", TargetType: "document"})
	require.Error(t, err)
}

func TestActivityServiceRequiresActor(t *testing.T) {
	svc := NewActivityService(&activityStoreStub{}, nil, nil, ActivityServiceConfig{})
	err := svc.RecordForActor(nil, dto.RecordActivityRequest{Action: models.ActivityActionView, TargetType: "document"})
	require.Error(t, err)
}

func TestActivityServiceRecentLimit(t *testing.T) {
	store := &activityStoreStub{}
	for i := 0; i < 30; i++ {
		store.entries = append(store.entries, models.ActivityEntry{ID: "e"})
	}
	svc := NewActivityService(store, nil, nil, ActivityServiceConfig{RecentLimit: 20})

	entries, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 20)
}
