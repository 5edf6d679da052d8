package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studyshelf/studyshelf-api/internal/dto"
	appErrors "github.com/studyshelf/studyshelf-api/pkg/errors"
)

type fakeDashboardSrv struct {
	departments []dto.DepartmentView
	subjects    []dto.SubjectGroup
	lectures    []dto.LectureGroup
	stats       *dto.DashboardStats
	suggestions []dto.Suggestion
	err         error

	lastDepartment string
	lastSubject    string
	lastQuery      string
	lastFormat     string
}

func (f *fakeDashboardSrv) Departments(context.Context) ([]dto.DepartmentView, error) {
	return f.departments, f.err
}

func (f *fakeDashboardSrv) Subjects(_ context.Context, department string) ([]dto.SubjectGroup, error) {
	f.lastDepartment = department
	return f.subjects, f.err
}

func (f *fakeDashboardSrv) Lectures(_ context.Context, department, subject string) ([]dto.LectureGroup, error) {
	f.lastDepartment = department
	f.lastSubject = subject
	return f.lectures, f.err
}

func (f *fakeDashboardSrv) Stats(context.Context) (*dto.DashboardStats, error) {
	return f.stats, f.err
}

func (f *fakeDashboardSrv) Suggest(_ context.Context, query string) ([]dto.Suggestion, error) {
	f.lastQuery = query
	return f.suggestions, f.err
}

func (f *fakeDashboardSrv) Export(_ context.Context, format string) ([]byte, string, string, error) {
	f.lastFormat = format
	if f.err != nil {
		return nil, "", "", f.err
	}
	return []byte("a,b\n"), "text/csv", "catalogue-2026-03-10.csv", nil
}

func TestDashboardHandlerDepartments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{departments: []dto.DepartmentView{{ID: "BSCS-1st", FileCount: 3}}}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/departments", nil)

	handler.Departments(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []dto.DepartmentView `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, "BSCS-1st", envelope.Data[0].ID)
}

func TestDashboardHandlerSubjectsPassesDepartment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{subjects: []dto.SubjectGroup{{Name: "Data Structures"}}}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/departments/BSCS-1st/subjects", nil)
	c.Params = gin.Params{{Key: "department", Value: "BSCS-1st"}}

	handler.Subjects(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BSCS-1st", srv.lastDepartment)
}

func TestDashboardHandlerSubjectsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{err: appErrors.ErrNotFound}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/departments/BS-Nope/subjects", nil)
	c.Params = gin.Params{{Key: "department", Value: "BS-Nope"}}

	handler.Subjects(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandlerSuggestionsTrimsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{suggestions: []dto.Suggestion{}}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/suggestions?q=%20data%20", nil)

	handler.Suggestions(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data", srv.lastQuery)
}

func TestDashboardHandlerExportDefaultsToCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/export", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.lastFormat)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "catalogue-")
}
