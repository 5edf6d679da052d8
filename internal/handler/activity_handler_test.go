package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	"github.com/studyshelf/studyshelf-api/internal/models"
)

type fakeActivitySrv struct {
	entries   []models.ActivityEntry
	err       error
	lastLimit int
	recorded  []dto.RecordActivityRequest
}

func (f *fakeActivitySrv) Recent(_ context.Context, limit int) ([]models.ActivityEntry, error) {
	f.lastLimit = limit
	return f.entries, f.err
}

func (f *fakeActivitySrv) RecordForActor(_ *models.JWTClaims, req dto.RecordActivityRequest) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, req)
	return nil
}

func TestActivityHandlerRecent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeActivitySrv{entries: []models.ActivityEntry{{ID: "act-1", Action: models.ActivityActionUpload}}}
	handler := NewActivityHandler(srv, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/activity?limit=10", nil)

	handler.Recent(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, srv.lastLimit)
}

func TestActivityHandlerRecordQueues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeActivitySrv{}
	handler := NewActivityHandler(srv, nil)

	payload := `{"action":"upload","target_type":"document","target_name":"notes.pdf"}`
	rec := httptest.NewRecorder()
	c := authedContext(t, rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/activity", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Record(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, srv.recorded, 1)
	assert.Equal(t, "upload", srv.recorded[0].Action)
}

func TestActivityHandlerRecordRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewActivityHandler(&fakeActivitySrv{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/activity", strings.NewReader(`{"action":"upload","target_type":"document"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Record(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActivityHandlerRecordRejectsBadPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeActivitySrv{}
	handler := NewActivityHandler(srv, nil)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/activity", strings.NewReader(`{"target_type":"document"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Record(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.recorded)
}
